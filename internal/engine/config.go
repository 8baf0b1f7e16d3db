package engine

import (
	diffimage "image-diff/internal/diff/image"
	"image/color"
	"strings"

	"golang.org/x/xerrors"
)

// DefaultWindowRadius gives a 9x9 similarity window.
const DefaultWindowRadius = 4

type Config struct {
	DiffColor       color.NRGBA
	AlphaSource     diffimage.AlphaSource
	DimensionPolicy diffimage.DimensionPolicy
	// WindowRadius is the radius in pixels of the square window each
	// similarity map value is computed over. 0 compares single pixels. The
	// score always covers the whole image.
	WindowRadius int
	// HeatMapExtension is appended to the output path by the similarity Diff
	// entry point and selects the heat map format.
	HeatMapExtension string
	HeatMapStops     []string
}

func DefaultConfig() Config {
	return Config{
		DiffColor:        color.NRGBA{R: 255, A: 255},
		AlphaSource:      diffimage.AlphaFromBefore,
		DimensionPolicy:  diffimage.Strict,
		WindowRadius:     DefaultWindowRadius,
		HeatMapExtension: ".png",
		HeatMapStops:     diffimage.DefaultHeatMapStops,
	}
}

func ParseAlphaSource(s string) (diffimage.AlphaSource, error) {
	switch strings.ToLower(s) {
	case "before":
		return diffimage.AlphaFromBefore, nil
	case "after":
		return diffimage.AlphaFromAfter, nil
	default:
		return 0, xerrors.Errorf("unknown alpha source %q, expected before or after", s)
	}
}

func ParseDimensionPolicy(s string) (diffimage.DimensionPolicy, error) {
	switch strings.ToLower(s) {
	case "strict":
		return diffimage.Strict, nil
	case "padding":
		return diffimage.Padding, nil
	default:
		return 0, xerrors.Errorf("unknown dimension policy %q, expected strict or padding", s)
	}
}
