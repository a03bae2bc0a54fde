package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	heicexif "github.com/dsoprea/go-heic-exif-extractor"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"
	pngstructure "github.com/dsoprea/go-png-image-structure"
	tiffstructure "github.com/dsoprea/go-tiff-image-structure"
	riimage "github.com/dsoprea/go-utility/image"
	"github.com/gabriel-vasile/mimetype"
)

type exifParser interface {
	Parse(rs io.ReadSeeker, size int) (ec riimage.MediaContext, err error)
}

// StructuredExtractor locates the EXIF block through the container's own
// structure (HEIF boxes, JPEG segments, PNG chunks, TIFF IFDs) and falls back
// to a brute-force search of the payload.
type StructuredExtractor struct {
	bruteForce bool
}

func NewStructuredExtractor() *StructuredExtractor {
	return &StructuredExtractor{bruteForce: true}
}

func parserFor(data []byte) (exifParser, string) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/heic"), mt.Is("image/heif"), mt.Is("image/heic-sequence"), mt.Is("image/heif-sequence"), mt.Is("image/avif"):
		return heicexif.NewHeicExifMediaParser(), "heic"
	case mt.Is("image/jpeg"):
		return jpegstructure.NewJpegMediaParser(), "jpeg"
	case mt.Is("image/png"):
		return pngstructure.NewPngMediaParser(), "png"
	case mt.Is("image/tiff"):
		return tiffstructure.NewTiffMediaParser(), "tiff"
	default:
		return nil, ""
	}
}

// Tags returns the flattened EXIF tags and a source label.
func (s *StructuredExtractor) Tags(data []byte) (tags map[string]string, source string, err error) {
	// The dsoprea parsers signal some malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			tags, source, err = nil, "", fmt.Errorf("exif parser panic: %v", r)
		}
	}()

	var exifData []byte

	parser, kind := parserFor(data)
	if parser != nil {
		if res, pErr := parser.Parse(bytes.NewReader(data), len(data)); pErr == nil {
			_, exifData, _ = res.Exif()
			source = "EXIF:" + kind
		}
	}

	if len(exifData) == 0 && s.bruteForce {
		exifData, err = exif.SearchAndExtractExif(data)
		if err != nil {
			if errors.Is(err, exif.ErrNoExif) {
				return nil, "", ErrNoMetadata
			}
			return nil, "", fmt.Errorf("search EXIF: %w", err)
		}
		source = "EXIF:search"
	}

	if len(exifData) == 0 {
		return nil, "", ErrNoMetadata
	}

	entries, _, err := exif.GetFlatExifData(exifData, nil)
	if err != nil {
		return nil, "", fmt.Errorf("parse EXIF entries: %w", err)
	}

	tags = make(map[string]string)
	for _, tag := range entries {
		if tag.TagName == "" {
			continue
		}
		value := strings.TrimSpace(strings.ReplaceAll(tag.FormattedFirst, "\x00", ""))
		if value == "" {
			continue
		}
		// IFD0 comes first; keep the first occurrence of a name.
		if _, ok := tags[tag.TagName]; !ok {
			tags[tag.TagName] = value
		}
	}

	if len(tags) == 0 {
		return nil, "", ErrNoMetadata
	}
	return tags, source, nil
}
