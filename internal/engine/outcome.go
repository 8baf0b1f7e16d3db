package engine

import (
	"encoding/json"
	"errors"
	"image"
	diffimage "image-diff/internal/diff/image"
	"image-diff/internal/imageio"
)

type Kind int

const (
	Match Kind = iota
	Different
	NotFound
	DecodeError
	DimensionMismatch
	WriteFailure
)

func (k Kind) String() string {
	switch k {
	case Match:
		return "images_match"
	case Different:
		return "different"
	case NotFound:
		return "not_found"
	case DecodeError:
		return "decode_error"
	case DimensionMismatch:
		return "dimension_mismatch"
	case WriteFailure:
		return "write_failure"
	default:
		return "unknown"
	}
}

// Outcome is the single result of one comparison. Exactly the fields relevant
// to Kind are set.
type Outcome struct {
	Kind Kind
	// Path is where the artifact was written.
	Path string
	// URL is where the artifact was published by a storage backend.
	URL string
	// Data is the encoded artifact when nothing was written to disk.
	Data []byte
	// Score is set by the similarity engine.
	Score      *float64
	DiffAmount float64
	Regions    []diffimage.Rectangle
	// FailedPath names the input or output the failure relates to.
	FailedPath string
	Err        error
	// Artifact is the in-memory diff image or heat map. It is never serialized.
	Artifact image.Image
}

func (o Outcome) Failed() bool {
	return o.Kind != Match && o.Kind != Different
}

// ExitCode is 0 for a match, 1 for a difference and 2 for any failure.
func (o Outcome) ExitCode() int {
	switch o.Kind {
	case Match:
		return 0
	case Different:
		return 1
	default:
		return 2
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	var message string
	if o.Err != nil {
		message = o.Err.Error()
	}

	return json.Marshal(struct {
		Result     string                `json:"result"`
		Path       string                `json:"path,omitempty"`
		URL        string                `json:"url,omitempty"`
		Data       []byte                `json:"data,omitempty"`
		Score      *float64              `json:"score,omitempty"`
		DiffAmount float64               `json:"diffAmount,omitempty"`
		Regions    []diffimage.Rectangle `json:"regions,omitempty"`
		FailedPath string                `json:"failedPath,omitempty"`
		Error      string                `json:"error,omitempty"`
	}{
		Result:     o.Kind.String(),
		Path:       o.Path,
		URL:        o.URL,
		Data:       o.Data,
		Score:      o.Score,
		DiffAmount: o.DiffAmount,
		Regions:    o.Regions,
		FailedPath: o.FailedPath,
		Error:      message,
	})
}

// FromError classifies a loader, engine or writer error. Anything that is not
// recognised is reported as a decode error since only the writer produces
// write failures.
func FromError(err error) Outcome {
	var notFoundErr *imageio.NotFoundError
	if errors.As(err, &notFoundErr) {
		return Outcome{Kind: NotFound, FailedPath: notFoundErr.Path, Err: err}
	}

	var writeErr *imageio.WriteError
	if errors.As(err, &writeErr) {
		return Outcome{Kind: WriteFailure, FailedPath: writeErr.Path, Err: err}
	}

	if errors.Is(err, diffimage.ErrDimensionMismatch) {
		return Outcome{Kind: DimensionMismatch, Err: err}
	}

	var decodeErr *imageio.DecodeError
	if errors.As(err, &decodeErr) {
		return Outcome{Kind: DecodeError, FailedPath: decodeErr.Path, Err: err}
	}

	return Outcome{Kind: DecodeError, Err: err}
}
