package image

import (
	"image-diff/internal/imageio"
	"math"

	"golang.org/x/xerrors"
)

const channelCount = 3

// channelScale normalises a squared channel deviation to [0, 1].
const channelScale = 255 * 255

type SimilarityDiff struct {
	windowRadius int
}

func NewSimilarityDiff(windowRadius int) *SimilarityDiff {
	return &SimilarityDiff{
		windowRadius: max(windowRadius, 0),
	}
}

// Calculate scores how close after is to before as 1 - RMS of the normalised
// per-channel deviations. Squared deviations are accumulated as integers so
// identical inputs always score exactly 1.
func (s *SimilarityDiff) Calculate(before *imageio.RGB, after *imageio.RGB) (*SimilarityResult, error) {
	if before.Width != after.Width || before.Height != after.Height {
		return nil, xerrors.Errorf("before is %dx%d, after is %dx%d: %w", before.Width, before.Height, after.Width, after.Height, ErrDimensionMismatch)
	}

	width, height := before.Width, before.Height
	squared := make([]int64, width*height)
	var total int64
	for i := range squared {
		var sum int64
		for c := 0; c < channelCount; c++ {
			d := int64(before.Pix[i*channelCount+c]) - int64(after.Pix[i*channelCount+c])
			sum += d * d
		}
		squared[i] = sum
		total += sum
	}

	score := 1.0
	if n := len(squared); n > 0 {
		score = 1 - math.Sqrt(float64(total)/float64(int64(n)*channelCount*channelScale))
	}

	return &SimilarityResult{
		Score: score,
		Map:   s.similarityMap(squared, width, height),
	}, nil
}

func (s *SimilarityDiff) similarityMap(squared []int64, width int, height int) *SimilarityMap {
	values := make([]float64, len(squared))
	m := &SimilarityMap{
		Values: values,
		Width:  width,
		Height: height,
	}

	if s.windowRadius == 0 {
		for i, sum := range squared {
			values[i] = 1 - math.Sqrt(float64(sum)/(channelCount*channelScale))
		}
		return m
	}

	// Summed-area table with a zero row and column in front.
	stride := width + 1
	table := make([]int64, stride*(height+1))
	for y := 0; y < height; y++ {
		var row int64
		for x := 0; x < width; x++ {
			row += squared[y*width+x]
			table[(y+1)*stride+x+1] = table[y*stride+x+1] + row
		}
	}

	r := s.windowRadius
	for y := 0; y < height; y++ {
		y0, y1 := max(y-r, 0), min(y+r+1, height)
		for x := 0; x < width; x++ {
			x0, x1 := max(x-r, 0), min(x+r+1, width)
			sum := table[y1*stride+x1] - table[y0*stride+x1] - table[y1*stride+x0] + table[y0*stride+x0]
			count := int64((x1 - x0) * (y1 - y0))
			values[y*width+x] = 1 - math.Sqrt(float64(sum)/float64(count*channelCount*channelScale))
		}
	}
	return m
}
