// Package codec re-encodes HEIC/HEIF payloads as JPEG.
//
// Decoding the container is delegated to a Decoder (the vips command-line
// tool in production). Encoding is done in-process with imaging so the
// quality factor is applied the same way regardless of the decoder.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

var (
	// ErrUnavailable means the codec cannot run at all (missing binary,
	// cancelled context). Callers should abort the batch.
	ErrUnavailable = errors.New("image codec service unavailable")
	// ErrConversion means one payload could not be converted.
	ErrConversion = errors.New("image conversion failed")
)

// Service converts HEIC/HEIF bytes into JPEG bytes.
type Service interface {
	ToJPEG(ctx context.Context, data []byte, quality types.Quality) ([]byte, error)
}

// Decoder turns an encoded container into pixels.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (image.Image, error)
}

// Converter is the default Service.
type Converter struct {
	decoder Decoder
}

func NewConverter(decoder Decoder) *Converter {
	return &Converter{decoder: decoder}
}

func (c *Converter) ToJPEG(ctx context.Context, data []byte, quality types.Quality) ([]byte, error) {
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: quality %v outside (0,1]", ErrConversion, float64(quality))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrConversion)
	}

	img, err := c.decoder.Decode(ctx, data)
	if err != nil {
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConversion) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	return EncodeJPEG(img, quality)
}

// EncodeJPEG encodes img as a baseline JPEG at the given quality.
func EncodeJPEG(img image.Image, quality types.Quality) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality.Percent())); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %v", ErrConversion, err)
	}
	return buf.Bytes(), nil
}
