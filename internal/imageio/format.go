package imageio

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/xerrors"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var ErrUnsupportedFormat = xerrors.New("unsupported image format")

var extensions = map[string]Format{
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
}

// FormatFromPath infers the output format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensions[ext]
	if !ok {
		return "", xerrors.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	return format, nil
}

func encode(img image.Image, format Format) ([]byte, error) {
	var buffer bytes.Buffer

	var err error
	switch format {
	case PNG:
		encoder := &png.Encoder{CompressionLevel: png.DefaultCompression}
		err = encoder.Encode(&buffer, img)
	case JPEG:
		err = jpeg.Encode(&buffer, img, &jpeg.Options{Quality: 90})
	case GIF:
		err = gif.Encode(&buffer, img, nil)
	case BMP:
		err = bmp.Encode(&buffer, img)
	case TIFF:
		err = tiff.Encode(&buffer, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, xerrors.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
