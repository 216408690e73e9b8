package storage

import (
	"bytes"
	"fmt"
	"strings"

	"gallery/internal/config"
	"gallery/internal/domain"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ImageInfo describes an uploaded image after sniffing and decoding.
type ImageInfo struct {
	MIME      string
	Extension string // with leading dot, e.g. ".png"
	Width     int
	Height    int
}

// InspectImage sniffs the content type and decodes the image. Anything that
// is not a decodable image is a validation error.
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, &domain.ValidationError{Message: "image is empty"}
	}
	if len(data) > config.MaxImageBytes {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("image exceeds maximum size of %d bytes", config.MaxImageBytes),
		}
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unsupported file type %s: only images can be uploaded", mt.String()),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("image could not be decoded (%s): %v", mt.String(), err),
		}
	}

	bounds := img.Bounds()
	return &ImageInfo{
		MIME:      mt.String(),
		Extension: mt.Extension(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}
