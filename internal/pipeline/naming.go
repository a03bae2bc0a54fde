package pipeline

import (
	"strings"

	"github.com/On-Jun9/HeicPipe/internal/classify"
)

// OutputName returns the JPEG filename for a converted HEIC input.
// A .heic/.heif suffix is matched case-insensitively and replaced with .jpg;
// the stem keeps its original case.
func OutputName(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range classify.HeicSuffixes() {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)] + ".jpg"
		}
	}
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return name
	}
	return name + ".jpg"
}
