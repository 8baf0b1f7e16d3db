package image

import (
	"image"
	"image/color"
	"slices"

	"golang.org/x/xerrors"
)

type AlphaSource int

const (
	// AlphaFromBefore keeps the reference transparency.
	AlphaFromBefore AlphaSource = iota
	AlphaFromAfter
)

type DimensionPolicy int

const (
	// Strict rejects images whose dimensions differ.
	Strict DimensionPolicy = iota
	// Padding compares on a canvas sized to the larger of both inputs and
	// flags every position outside either input as different.
	Padding
)

type PixelDiff struct {
	diffColor   color.NRGBA
	alphaSource AlphaSource
	policy      DimensionPolicy
}

func NewPixelDiff(diffColor color.NRGBA, alphaSource AlphaSource, policy DimensionPolicy) *PixelDiff {
	return &PixelDiff{
		diffColor:   diffColor,
		alphaSource: alphaSource,
		policy:      policy,
	}
}

func (p *PixelDiff) Calculate(before *image.NRGBA, after *image.NRGBA) (*DiffResult, error) {
	beforeBounds := before.Bounds()
	afterBounds := after.Bounds()
	beforeWidth, beforeHeight := beforeBounds.Dx(), beforeBounds.Dy()
	afterWidth, afterHeight := afterBounds.Dx(), afterBounds.Dy()

	if (beforeWidth != afterWidth || beforeHeight != afterHeight) && p.policy != Padding {
		return nil, xerrors.Errorf("before is %dx%d, after is %dx%d: %w", beforeWidth, beforeHeight, afterWidth, afterHeight, ErrDimensionMismatch)
	}

	width := max(beforeWidth, afterWidth)
	height := max(beforeHeight, afterHeight)
	diff := image.NewNRGBA(image.Rect(0, 0, width, height))
	mask := make([]bool, width*height)

	match := beforeWidth == width && beforeHeight == height
	var diffPixelCount int64

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			diffOffset := diff.PixOffset(x, y)

			if x >= beforeWidth || y >= beforeHeight || x >= afterWidth || y >= afterHeight {
				diff.Pix[diffOffset] = p.diffColor.R
				diff.Pix[diffOffset+1] = p.diffColor.G
				diff.Pix[diffOffset+2] = p.diffColor.B
				diff.Pix[diffOffset+3] = 0xff
				mask[y*width+x] = true
				diffPixelCount++

				if match {
					// Padding inside before still has to equal before.
					beforeOffset := before.PixOffset(beforeBounds.Min.X+x, beforeBounds.Min.Y+y)
					if !slices.Equal(diff.Pix[diffOffset:diffOffset+4], before.Pix[beforeOffset:beforeOffset+4]) {
						match = false
					}
				}
				continue
			}

			beforeOffset := before.PixOffset(beforeBounds.Min.X+x, beforeBounds.Min.Y+y)
			afterOffset := after.PixOffset(afterBounds.Min.X+x, afterBounds.Min.Y+y)

			br := before.Pix[beforeOffset]
			bg := before.Pix[beforeOffset+1]
			bb := before.Pix[beforeOffset+2]
			ba := before.Pix[beforeOffset+3]

			ar := after.Pix[afterOffset]
			ag := after.Pix[afterOffset+1]
			ab := after.Pix[afterOffset+2]
			aa := after.Pix[afterOffset+3]

			r, g, b := ar, ag, ab
			if br != ar || bg != ag || bb != ab {
				r, g, b = p.diffColor.R, p.diffColor.G, p.diffColor.B
				mask[y*width+x] = true
				diffPixelCount++
			}

			a := ba
			if p.alphaSource == AlphaFromAfter {
				a = aa
			}

			diff.Pix[diffOffset] = r
			diff.Pix[diffOffset+1] = g
			diff.Pix[diffOffset+2] = b
			diff.Pix[diffOffset+3] = a

			if match && (r != br || g != bg || b != bb || a != ba) {
				match = false
			}
		}
	}

	diffAmount := 0.0
	if totalPixelCount := int64(width * height); totalPixelCount > 0 {
		diffAmount = float64(diffPixelCount) / float64(totalPixelCount)
	}

	return &DiffResult{
		Image:      diff,
		Match:      match,
		DiffAmount: diffAmount,
		Regions:    findRegions(mask, width, height),
	}, nil
}
