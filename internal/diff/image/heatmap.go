package image

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/xerrors"
)

var DefaultHeatMapStops = []string{"#000000", "#ffd700", "#ff0000"}

// ColorRamp maps t in [0, 1] onto a gradient blended in CIE-L*a*b*.
type ColorRamp struct {
	stops []colorful.Color
}

func NewColorRamp(hexStops ...string) (*ColorRamp, error) {
	if len(hexStops) < 2 {
		return nil, xerrors.Errorf("color ramp needs at least 2 stops, got %d", len(hexStops))
	}

	stops := make([]colorful.Color, 0, len(hexStops))
	for _, hex := range hexStops {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, xerrors.Errorf("failed to parse color stop %q: %w", hex, err)
		}
		stops = append(stops, c)
	}

	return &ColorRamp{
		stops: stops,
	}, nil
}

func (r *ColorRamp) At(t float64) color.NRGBA {
	if math.IsNaN(t) || t <= 0 {
		return toNRGBA(r.stops[0])
	}
	if t >= 1 {
		return toNRGBA(r.stops[len(r.stops)-1])
	}

	segment := t * float64(len(r.stops)-1)
	i := int(segment)
	local := segment - float64(i)
	if local == 0 {
		return toNRGBA(r.stops[i])
	}
	return toNRGBA(r.stops[i].BlendLab(r.stops[i+1], local).Clamped())
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// HeatMap renders the dissimilarity (1 - value) of every pixel through ramp.
func (m *SimilarityMap) HeatMap(ramp *ColorRamp) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := ramp.At(1 - m.Values[y*m.Width+x])
			offset := dst.PixOffset(x, y)
			dst.Pix[offset] = c.R
			dst.Pix[offset+1] = c.G
			dst.Pix[offset+2] = c.B
			dst.Pix[offset+3] = c.A
		}
	}
	return dst
}
