// Package classify assigns input files to a FileCategory.
package classify

import (
	"mime"
	"strings"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

var (
	heicMimeTypes = map[string]bool{"image/heic": true, "image/heif": true}
	jpegMimeTypes = map[string]bool{"image/jpeg": true, "image/jpg": true}

	heicSuffixes = []string{".heic", ".heif"}
	jpegSuffixes = []string{".jpg", ".jpeg"}
)

// HeicSuffixes returns the filename suffixes treated as HEIC-like.
func HeicSuffixes() []string {
	return append([]string(nil), heicSuffixes...)
}

// Classify returns the category of file. It never fails.
func Classify(file types.InputFile) types.FileCategory {
	return ClassifyName(file.Name, file.DeclaredMimeType)
}

// ClassifyName classifies by declared MIME type first, then by filename suffix.
// Either match alone is sufficient.
func ClassifyName(name, mimeType string) types.FileCategory {
	mt := normalizeMime(mimeType)
	switch {
	case heicMimeTypes[mt]:
		return types.CategoryHeicLike
	case jpegMimeTypes[mt]:
		return types.CategoryJpegLike
	}

	lower := strings.ToLower(name)
	switch {
	case hasAnySuffix(lower, heicSuffixes):
		return types.CategoryHeicLike
	case hasAnySuffix(lower, jpegSuffixes):
		return types.CategoryJpegLike
	}

	return types.CategoryUnsupported
}

// normalizeMime lower-cases mimeType and drops parameters such as "; charset=".
func normalizeMime(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(mimeType)
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
