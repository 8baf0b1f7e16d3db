package imageio

import (
	"bufio"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/xerrors"
)

// ErrNotFound is returned when an input path cannot be opened for reading.
var ErrNotFound = xerrors.New("image not found")

// NotFoundError reports an input path that could not be opened. It matches
// ErrNotFound with errors.Is.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return "failed to open image " + e.Path + ": " + e.Err.Error()
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DecodeError reports bytes that no registered codec could decode.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return "failed to decode image " + e.Path + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Load opens path and decodes it into an NRGBA buffer anchored at (0, 0).
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	defer f.Close()

	return Decode(f, path)
}

// Decode decodes r into an NRGBA buffer. name identifies the input in errors.
func Decode(r io.Reader, name string) (*image.NRGBA, error) {
	img, _, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts img to non-premultiplied 8-bit RGBA without losing
// information for NRGBA or opaque inputs.
func ToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if src, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			srcOffset := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+width*4], src.Pix[srcOffset:srcOffset+width*4])
		}
		return dst
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			offset := dst.PixOffset(x, y)
			dst.Pix[offset] = c.R
			dst.Pix[offset+1] = c.G
			dst.Pix[offset+2] = c.B
			dst.Pix[offset+3] = c.A
		}
	}
	return dst
}
