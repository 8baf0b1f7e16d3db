package image

import (
	"image"

	"golang.org/x/xerrors"
)

// ErrDimensionMismatch is returned when the compared images differ in width or
// height and the dimension policy does not allow padding.
var ErrDimensionMismatch = xerrors.New("image dimensions differ")

type DiffResult struct {
	// Image has the comparison region's dimensions. Differing positions carry
	// the diff colour, the rest carry the after image's colour.
	Image *image.NRGBA
	// Match is true when Image is identical to the before image in all four
	// channels.
	Match bool
	// DiffAmount is the fraction of positions flagged as different.
	DiffAmount float64
	// Regions bounds the connected areas of flagged positions.
	Regions []Rectangle
}

type SimilarityResult struct {
	// Score is in [0, 1]; 1 means every channel of every pixel is equal.
	Score float64
	Map   *SimilarityMap
}

// SimilarityMap holds one similarity value in [0, 1] per pixel, row-major.
type SimilarityMap struct {
	Values []float64
	Width  int
	Height int
}

func (m *SimilarityMap) At(x int, y int) float64 {
	return m.Values[y*m.Width+x]
}
