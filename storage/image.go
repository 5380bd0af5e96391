package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/nfnt/resize"
	"golang.org/x/image/webp"
)

const (
	compressThreshold = 300 * 1024
	maxImageSide      = 1280
	jpegQuality       = 80
)

var (
	ErrNotImage  = errors.New("file is not a supported image")
	ErrTooLarge  = errors.New("file exceeds the size limit")
	ErrEmptyFile = errors.New("file is empty")
)

// Prepared is an image ready to be stored.
type Prepared struct {
	Data        []byte
	ContentType string
	Ext         string
}

// PrepareImage sniffs and decodes data. Large or oversized images are scaled
// down to fit maxImageSide and re-encoded as JPEG; small ones pass through.
func PrepareImage(data []byte) (*Prepared, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	contentType := http.DetectContentType(data)
	var (
		img image.Image
		err error
		ext string
	)
	switch contentType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
		ext = ".jpg"
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
		ext = ".png"
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
		ext = ".webp"
	default:
		return nil, ErrNotImage
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	oversized := bounds.Dx() > maxImageSide || bounds.Dy() > maxImageSide
	if len(data) < compressThreshold && !oversized {
		return &Prepared{Data: data, ContentType: contentType, Ext: ext}, nil
	}

	scaled := resize.Thumbnail(maxImageSide, maxImageSide, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %v", err)
	}
	return &Prepared{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: ".jpg"}, nil
}
