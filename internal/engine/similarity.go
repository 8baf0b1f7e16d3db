package engine

import (
	"image"
	diffimage "image-diff/internal/diff/image"
	"image-diff/internal/imageio"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// Similarity scores the inputs and renders a heat map of where they diverge.
type Similarity struct {
	differ           *diffimage.SimilarityDiff
	ramp             *diffimage.ColorRamp
	heatMapExtension string
	load             loadFunc
}

func NewSimilarity(cfg Config) (*Similarity, error) {
	stops := cfg.HeatMapStops
	if len(stops) == 0 {
		stops = diffimage.DefaultHeatMapStops
	}
	ramp, err := diffimage.NewColorRamp(stops...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create heat map ramp: %w", err)
	}

	extension := cfg.HeatMapExtension
	if extension == "" {
		extension = ".png"
	}

	return &Similarity{
		differ:           diffimage.NewSimilarityDiff(cfg.WindowRadius),
		ramp:             ramp,
		heatMapExtension: extension,
		load:             imageio.Load,
	}, nil
}

func (s *Similarity) Compare(before image.Image, after image.Image) Outcome {
	result, err := s.differ.Calculate(imageio.ToRGB(before), imageio.ToRGB(after))
	if err != nil {
		return FromError(err)
	}

	if result.Score == 1.0 {
		return Outcome{Kind: Match}
	}

	score := result.Score
	return Outcome{
		Kind:     Different,
		Score:    &score,
		Artifact: result.Map.HeatMap(s.ramp),
	}
}

// DiffImages saves the heat map next to output, at output plus the heat map
// extension.
func (s *Similarity) DiffImages(before image.Image, after image.Image, output string) Outcome {
	outcome := s.Compare(before, after)
	if outcome.Kind == Different && output == "" {
		return FromError(&imageio.WriteError{Err: xerrors.New("no heat map destination")})
	}
	return s.save(outcome, output+s.heatMapExtension)
}

func (s *Similarity) DiffAndSave(beforePath string, afterPath string, output string) Outcome {
	before, after, err := loadPair(s.load, beforePath, afterPath)
	if err != nil {
		return FromError(err)
	}

	return s.save(s.Compare(before, after), output)
}

func (s *Similarity) Diff(beforePath string, afterPath string, output string) Outcome {
	before, after, err := loadPair(s.load, beforePath, afterPath)
	if err != nil {
		return FromError(err)
	}

	return s.save(s.Compare(before, after), s.HeatMapPath(afterPath, output))
}

// HeatMapPath derives where Diff writes the heat map. Without an output it is
// placed next to the after image.
func (s *Similarity) HeatMapPath(afterPath string, output string) string {
	if output != "" {
		return output + s.heatMapExtension
	}
	return strings.TrimSuffix(afterPath, filepath.Ext(afterPath)) + ".similarity" + s.heatMapExtension
}

func (s *Similarity) save(outcome Outcome, path string) Outcome {
	if outcome.Kind != Different {
		return outcome
	}

	if err := imageio.Save(outcome.Artifact, path); err != nil {
		return FromError(err)
	}
	outcome.Path = path

	return outcome
}
