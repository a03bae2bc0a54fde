package metadata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// EXIFExtractor decodes EXIF from JPEG, TIFF or raw EXIF blocks with goexif.
type EXIFExtractor struct{}

func NewEXIFExtractor() *EXIFExtractor {
	return &EXIFExtractor{}
}

// Tags returns every tag goexif understands, keyed by field name.
func (e *EXIFExtractor) Tags(data []byte) (map[string]string, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("no EXIF data: %w", err)
	}

	c := tagCollector{}
	if err := x.Walk(c); err != nil {
		return nil, fmt.Errorf("walk EXIF: %w", err)
	}

	if len(c) == 0 {
		return nil, fmt.Errorf("no tags found in EXIF")
	}
	return c, nil
}

type tagCollector map[string]string

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if v, err := tag.StringVal(); err == nil {
		v = strings.TrimSpace(strings.ReplaceAll(v, "\x00", ""))
		if v != "" {
			c[string(name)] = v
		}
		return nil
	}
	c[string(name)] = tag.String()
	return nil
}
