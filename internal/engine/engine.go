package engine

import (
	"image"

	"golang.org/x/xerrors"
)

const (
	ExactName      = "exact"
	SimilarityName = "similarity"
)

var ErrUnknownEngine = xerrors.New("unknown engine")

// Engine compares a before and an after image. Path based entry points load
// before first and never open after when before fails.
type Engine interface {
	// Compare works on decoded images and attaches the artifact without
	// serializing it.
	Compare(before image.Image, after image.Image) Outcome
	// DiffImages serializes the artifact of decoded images the way Diff does.
	DiffImages(before image.Image, after image.Image, output string) Outcome
	// DiffAndSave writes the artifact to output.
	DiffAndSave(before string, after string, output string) Outcome
	Diff(before string, after string, output string) Outcome
}

func New(name string, cfg Config) (Engine, error) {
	switch name {
	case ExactName:
		return NewExact(cfg), nil
	case SimilarityName:
		s, err := NewSimilarity(cfg)
		if err != nil {
			return nil, xerrors.Errorf("failed to create similarity engine: %w", err)
		}
		return s, nil
	default:
		return nil, xerrors.Errorf("%q: %w", name, ErrUnknownEngine)
	}
}

type loadFunc func(path string) (*image.NRGBA, error)

func loadPair(load loadFunc, beforePath string, afterPath string) (*image.NRGBA, *image.NRGBA, error) {
	before, err := load(beforePath)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to load before image: %w", err)
	}
	after, err := load(afterPath)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to load after image: %w", err)
	}
	return before, after, nil
}
