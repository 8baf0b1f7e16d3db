package imageio

import (
	"image"
	"image/color"
)

// RGB is a 3-channel, 8-bit image. Alpha is dropped on conversion.
type RGB struct {
	Pix    []uint8
	Width  int
	Height int
}

// At returns the channels of the pixel at (x, y).
func (r *RGB) At(x int, y int) (uint8, uint8, uint8) {
	offset := (y*r.Width + x) * 3
	return r.Pix[offset], r.Pix[offset+1], r.Pix[offset+2]
}

// ToRGB drops the alpha channel of img, keeping the stored colour values.
func ToRGB(img image.Image) *RGB {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := &RGB{
		Pix:    make([]uint8, width*height*3),
		Width:  width,
		Height: height,
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			srcOffset := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			dstOffset := y * width * 3
			for x := 0; x < width; x++ {
				dst.Pix[dstOffset] = src.Pix[srcOffset]
				dst.Pix[dstOffset+1] = src.Pix[srcOffset+1]
				dst.Pix[dstOffset+2] = src.Pix[srcOffset+2]
				srcOffset += 4
				dstOffset += 3
			}
		}
		return dst
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			offset := (y*width + x) * 3
			dst.Pix[offset] = c.R
			dst.Pix[offset+1] = c.G
			dst.Pix[offset+2] = c.B
		}
	}
	return dst
}
