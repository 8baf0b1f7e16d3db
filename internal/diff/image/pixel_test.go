package image

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var red = color.NRGBA{R: 255, A: 255}

func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestPixelDiff_Calculate(t *testing.T) {
	t.Parallel()

	pd := NewPixelDiff(red, AlphaFromBefore, Strict)

	t.Run("NoDifference", func(t *testing.T) {
		t.Parallel()

		before := createTestImage(100, 100, color.White)
		after := createTestImage(100, 100, color.White)

		result, err := pd.Calculate(before, after)
		if err != nil {
			t.Fatal(err)
		}

		if !result.Match {
			t.Error("Expected Match")
		}
		if result.DiffAmount != 0.0 {
			t.Errorf("Expected DiffAmount to be 0.0, got %f", result.DiffAmount)
		}
		if len(result.Regions) != 0 {
			t.Errorf("Expected no regions, got %v", result.Regions)
		}
		if diff := cmp.Diff(before.Pix, result.Image.Pix); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("CompleteDifference", func(t *testing.T) {
		t.Parallel()

		before := createTestImage(100, 100, color.White)
		after := createTestImage(100, 100, color.Black)

		result, err := pd.Calculate(before, after)
		if err != nil {
			t.Fatal(err)
		}

		if result.Match {
			t.Error("Expected no Match")
		}
		if result.DiffAmount != 1.0 {
			t.Errorf("Expected DiffAmount to be 1.0, got %f", result.DiffAmount)
		}
		if diff := cmp.Diff([]Rectangle{{X: 0, Y: 0, Width: 100, Height: 100}}, result.Regions); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("PartialDifference", func(t *testing.T) {
		t.Parallel()

		before := createTestImage(100, 100, color.White)
		after := createTestImage(100, 100, color.White)

		for y := 0; y < 50; y++ {
			for x := 0; x < 100; x++ {
				after.Set(x, y, color.Black)
			}
		}

		result, err := pd.Calculate(before, after)
		if err != nil {
			t.Fatal(err)
		}

		if result.DiffAmount != 0.5 {
			t.Errorf("Expected DiffAmount to be 0.5, got %f", result.DiffAmount)
		}
		if diff := cmp.Diff(red, result.Image.NRGBAAt(10, 10)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, result.Image.NRGBAAt(10, 60)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("SameImageInstance", func(t *testing.T) {
		t.Parallel()

		img := createTestImage(16, 16, color.White)
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, x, color.NRGBA{R: uint8(x * 10), G: 3, B: 200, A: uint8(x * 16)})
		}

		result, err := pd.Calculate(img, img)
		if err != nil {
			t.Fatal(err)
		}

		if !result.Match {
			t.Error("Expected an image to match itself")
		}
	})

	t.Run("SentinelColor", func(t *testing.T) {
		t.Parallel()

		before := createTestImage(1, 1, color.NRGBA{R: 1, A: 255})
		after := createTestImage(1, 1, color.NRGBA{R: 2, A: 128})

		result, err := pd.Calculate(before, after)
		if err != nil {
			t.Fatal(err)
		}

		if result.Match {
			t.Error("Expected no Match")
		}
		if diff := cmp.Diff(color.NRGBA{R: 255, A: 255}, result.Image.NRGBAAt(0, 0)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("CustomDiffColor", func(t *testing.T) {
		t.Parallel()

		magenta := color.NRGBA{R: 255, B: 255, A: 255}
		before := createTestImage(2, 1, color.White)
		after := createTestImage(2, 1, color.White)
		after.SetNRGBA(1, 0, color.NRGBA{A: 255})

		result, err := NewPixelDiff(magenta, AlphaFromBefore, Strict).Calculate(before, after)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(magenta, result.Image.NRGBAAt(1, 0)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		t.Parallel()

		result, err := pd.Calculate(createTestImage(10, 10, color.White), createTestImage(10, 11, color.White))
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
		}
		if result != nil {
			t.Errorf("Expected no result, got %v", result)
		}
	})
}

func TestPixelDiff_AlphaSource(t *testing.T) {
	t.Parallel()

	type in struct {
		before      color.NRGBA
		after       color.NRGBA
		alphaSource AlphaSource
	}
	type want struct {
		pixel color.NRGBA
		match bool
	}
	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			name: "before alpha hides a transparency-only change",
			in: in{
				before:      color.NRGBA{R: 10, G: 10, B: 10, A: 50},
				after:       color.NRGBA{R: 10, G: 10, B: 10, A: 200},
				alphaSource: AlphaFromBefore,
			},
			want: want{
				pixel: color.NRGBA{R: 10, G: 10, B: 10, A: 50},
				match: true,
			},
		},
		{
			name: "before alpha in the reverse direction",
			in: in{
				before:      color.NRGBA{R: 10, G: 10, B: 10, A: 200},
				after:       color.NRGBA{R: 10, G: 10, B: 10, A: 50},
				alphaSource: AlphaFromBefore,
			},
			want: want{
				pixel: color.NRGBA{R: 10, G: 10, B: 10, A: 200},
				match: true,
			},
		},
		{
			name: "after alpha surfaces a transparency-only change",
			in: in{
				before:      color.NRGBA{R: 10, G: 10, B: 10, A: 50},
				after:       color.NRGBA{R: 10, G: 10, B: 10, A: 200},
				alphaSource: AlphaFromAfter,
			},
			want: want{
				pixel: color.NRGBA{R: 10, G: 10, B: 10, A: 200},
				match: false,
			},
		},
		{
			name: "diff color keeps before alpha",
			in: in{
				before:      color.NRGBA{R: 10, G: 10, B: 10, A: 50},
				after:       color.NRGBA{R: 11, G: 10, B: 10, A: 200},
				alphaSource: AlphaFromBefore,
			},
			want: want{
				pixel: color.NRGBA{R: 255, A: 50},
				match: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := NewPixelDiff(red, tt.in.alphaSource, Strict).Calculate(createTestImage(1, 1, tt.in.before), createTestImage(1, 1, tt.in.after))
			if err != nil {
				t.Fatal(err)
			}

			got := want{
				pixel: result.Image.NRGBAAt(0, 0),
				match: result.Match,
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(want{})); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestPixelDiff_Padding(t *testing.T) {
	t.Parallel()

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	padded := color.NRGBA{R: 255, A: 255}

	type in struct {
		before *image.NRGBA
		after  *image.NRGBA
	}
	type want struct {
		bounds     image.Rectangle
		match      bool
		diffAmount float64
		regions    []Rectangle
		padded     []image.Point
		kept       []image.Point
	}
	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			name: "wider after",
			in: in{
				before: createTestImage(2, 2, color.White),
				after:  createTestImage(3, 2, color.White),
			},
			want: want{
				bounds:     image.Rect(0, 0, 3, 2),
				match:      false,
				diffAmount: 2.0 / 6.0,
				regions:    []Rectangle{{X: 2, Y: 0, Width: 1, Height: 2}},
				padded:     []image.Point{{X: 2, Y: 0}, {X: 2, Y: 1}},
				kept:       []image.Point{{X: 1, Y: 1}},
			},
		},
		{
			name: "wider before",
			in: in{
				before: createTestImage(3, 2, color.White),
				after:  createTestImage(2, 2, color.White),
			},
			want: want{
				bounds:     image.Rect(0, 0, 3, 2),
				match:      false,
				diffAmount: 2.0 / 6.0,
				regions:    []Rectangle{{X: 2, Y: 0, Width: 1, Height: 2}},
				padded:     []image.Point{{X: 2, Y: 0}, {X: 2, Y: 1}},
				kept:       []image.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
			},
		},
		{
			name: "taller before",
			in: in{
				before: createTestImage(2, 3, color.White),
				after:  createTestImage(2, 2, color.White),
			},
			want: want{
				bounds:     image.Rect(0, 0, 2, 3),
				match:      false,
				diffAmount: 2.0 / 6.0,
				regions:    []Rectangle{{X: 0, Y: 2, Width: 2, Height: 1}},
				padded:     []image.Point{{X: 0, Y: 2}, {X: 1, Y: 2}},
				kept:       []image.Point{{X: 1, Y: 1}},
			},
		},
		{
			name: "wider and taller before",
			in: in{
				before: createTestImage(3, 3, color.White),
				after:  createTestImage(2, 2, color.White),
			},
			want: want{
				bounds:     image.Rect(0, 0, 3, 3),
				match:      false,
				diffAmount: 5.0 / 9.0,
				regions:    []Rectangle{{X: 0, Y: 0, Width: 3, Height: 3}},
				padded:     []image.Point{{X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
				kept:       []image.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
			},
		},
		{
			name: "before already carries the padding colour",
			in: in{
				before: createTestImage(3, 2, padded),
				after:  createTestImage(2, 2, padded),
			},
			want: want{
				bounds:     image.Rect(0, 0, 3, 2),
				match:      true,
				diffAmount: 2.0 / 6.0,
				regions:    []Rectangle{{X: 2, Y: 0, Width: 1, Height: 2}},
				padded:     []image.Point{{X: 2, Y: 0}, {X: 2, Y: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := NewPixelDiff(color.NRGBA{R: 255, A: 10}, AlphaFromBefore, Padding).Calculate(tt.in.before, tt.in.after)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want.bounds, result.Image.Bounds()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want.match, result.Match); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want.diffAmount, result.DiffAmount); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want.regions, result.Regions); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			for _, p := range tt.want.padded {
				if diff := cmp.Diff(padded, result.Image.NRGBAAt(p.X, p.Y)); diff != "" {
					t.Errorf("%v (-want +got):\n%s", p, diff)
				}
			}
			for _, p := range tt.want.kept {
				if diff := cmp.Diff(white, result.Image.NRGBAAt(p.X, p.Y)); diff != "" {
					t.Errorf("%v (-want +got):\n%s", p, diff)
				}
			}
		})
	}
}

func TestPixelDiff_Regions(t *testing.T) {
	t.Parallel()

	type in struct {
		points []image.Point
	}
	tests := []struct {
		name string
		in   in
		want []Rectangle
	}{
		{
			name: "distant points stay separate",
			in: in{
				points: []image.Point{{X: 1, Y: 1}, {X: 35, Y: 35}},
			},
			want: []Rectangle{
				{X: 1, Y: 1, Width: 1, Height: 1},
				{X: 35, Y: 35, Width: 1, Height: 1},
			},
		},
		{
			name: "nearby points are merged",
			in: in{
				points: []image.Point{{X: 1, Y: 1}, {X: 18, Y: 18}},
			},
			want: []Rectangle{
				{X: 1, Y: 1, Width: 18, Height: 18},
			},
		},
		{
			name: "diagonal neighbours are connected",
			in: in{
				points: []image.Point{{X: 5, Y: 5}, {X: 6, Y: 6}, {X: 7, Y: 7}},
			},
			want: []Rectangle{
				{X: 5, Y: 5, Width: 3, Height: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := createTestImage(40, 40, color.White)
			after := createTestImage(40, 40, color.White)
			for _, p := range tt.in.points {
				after.Set(p.X, p.Y, color.Black)
			}

			result, err := NewPixelDiff(red, AlphaFromBefore, Strict).Calculate(before, after)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want, result.Regions); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func BenchmarkPixelDiff_Calculate_Small(b *testing.B) {
	pd := NewPixelDiff(red, AlphaFromBefore, Strict)
	before := createTestImage(1920, 1080, color.White)
	after := createTestImage(1920, 1080, color.White)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pd.Calculate(before, after)
	}
}

func BenchmarkPixelDiff_Calculate_Large(b *testing.B) {
	pd := NewPixelDiff(red, AlphaFromBefore, Strict)
	before := createTestImage(3840, 2160, color.White)
	after := createTestImage(3840, 2160, color.Black)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pd.Calculate(before, after)
	}
}
