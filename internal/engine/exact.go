package engine

import (
	"image"
	diffimage "image-diff/internal/diff/image"
	"image-diff/internal/imageio"
)

// Exact flags every position whose RGB channels differ and paints it with the
// diff colour.
type Exact struct {
	differ *diffimage.PixelDiff
	load   loadFunc
}

func NewExact(cfg Config) *Exact {
	return &Exact{
		differ: diffimage.NewPixelDiff(cfg.DiffColor, cfg.AlphaSource, cfg.DimensionPolicy),
		load:   imageio.Load,
	}
}

func (e *Exact) Compare(before image.Image, after image.Image) Outcome {
	result, err := e.differ.Calculate(imageio.ToNRGBA(before), imageio.ToNRGBA(after))
	if err != nil {
		return FromError(err)
	}

	if result.Match {
		return Outcome{Kind: Match}
	}

	return Outcome{
		Kind:       Different,
		DiffAmount: result.DiffAmount,
		Regions:    result.Regions,
		Artifact:   result.Image,
	}
}

// DiffImages returns the diff as PNG bytes. output is unused.
func (e *Exact) DiffImages(before image.Image, after image.Image, _ string) Outcome {
	outcome := e.Compare(before, after)
	if outcome.Kind != Different {
		return outcome
	}

	data, err := imageio.Encode(outcome.Artifact, imageio.PNG)
	if err != nil {
		return FromError(err)
	}
	outcome.Data = data

	return outcome
}

func (e *Exact) DiffAndSave(beforePath string, afterPath string, output string) Outcome {
	before, after, err := loadPair(e.load, beforePath, afterPath)
	if err != nil {
		return FromError(err)
	}

	outcome := e.Compare(before, after)
	if outcome.Kind != Different {
		return outcome
	}

	if err := imageio.Save(outcome.Artifact, output); err != nil {
		return FromError(err)
	}
	outcome.Path = output

	return outcome
}

// Diff never touches the disk beyond reading the inputs.
func (e *Exact) Diff(beforePath string, afterPath string, output string) Outcome {
	before, after, err := loadPair(e.load, beforePath, afterPath)
	if err != nil {
		return FromError(err)
	}

	return e.DiffImages(before, after, output)
}
