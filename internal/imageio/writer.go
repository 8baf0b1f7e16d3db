package imageio

import (
	"image"
	"image-diff/internal/atomicfile"
)

// WriteError reports an artifact that could not be encoded or persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return "failed to write image: " + e.Err.Error()
	}
	return "failed to write image " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Encode encodes img in memory without touching disk.
func Encode(img image.Image, format Format) ([]byte, error) {
	data, err := encode(img, format)
	if err != nil {
		return nil, &WriteError{Err: err}
	}
	return data, nil
}

// Save encodes img in the format implied by the extension of path and
// atomically replaces path with the result.
func Save(img image.Image, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	data, err := encode(img, format)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := atomicfile.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
