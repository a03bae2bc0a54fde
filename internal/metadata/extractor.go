// Package metadata extracts capture metadata (EXIF) from image payloads.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// ErrNoMetadata is returned when no tags could be read from a payload.
var ErrNoMetadata = errors.New("no metadata found")

// TagDateTimeOriginal is the tag holding the original capture time.
const TagDateTimeOriginal = "DateTimeOriginal"

// Extractor reads EXIF tags from HEIC, JPEG, PNG and TIFF payloads.
// Structured container parsing is tried first; the goexif decoder is the
// fallback when it fails or does not yield a capture time.
type Extractor struct {
	structured *StructuredExtractor
	exif       *EXIFExtractor
}

func New() *Extractor {
	return &Extractor{
		structured: NewStructuredExtractor(),
		exif:       NewEXIFExtractor(),
	}
}

// Extract returns the tags found in data. A nil result is never returned
// together with a nil error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*types.CaptureMetadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrNoMetadata)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags, source, structErr := e.structured.Tags(data)
	if tags == nil {
		tags = make(map[string]string)
	}

	var exifErr error
	if tags[TagDateTimeOriginal] == "" {
		var fallback map[string]string
		fallback, exifErr = e.exif.Tags(data)
		for k, v := range fallback {
			if _, ok := tags[k]; !ok {
				tags[k] = v
			}
		}
		if fallback[TagDateTimeOriginal] != "" || source == "" {
			source = "EXIF:goexif"
		}
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, errors.Join(structErr, exifErr))
	}

	return &types.CaptureMetadata{
		CaptureDateTime: tags[TagDateTimeOriginal],
		Tags:            tags,
		Source:          source,
	}, nil
}
