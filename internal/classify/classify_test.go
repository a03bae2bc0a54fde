package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		want     types.FileCategory
	}{
		{"heic mime", "photo.bin", "image/heic", types.CategoryHeicLike},
		{"heif mime", "photo", "image/heif", types.CategoryHeicLike},
		{"jpeg mime", "photo.dat", "image/jpeg", types.CategoryJpegLike},
		{"jpg mime", "photo", "image/jpg", types.CategoryJpegLike},
		{"upper-case mime", "photo", "IMAGE/HEIC", types.CategoryHeicLike},
		{"mime with params", "photo", "image/jpeg; q=0.9", types.CategoryJpegLike},
		{"heic suffix", "a.heic", "", types.CategoryHeicLike},
		{"heif suffix upper", "a.HEIF", "", types.CategoryHeicLike},
		{"jpg suffix", "a.jpg", "", types.CategoryJpegLike},
		{"jpeg suffix mixed", "a.JpEg", "", types.CategoryJpegLike},
		{"suffix wins over unknown mime", "a.heic", "application/octet-stream", types.CategoryHeicLike},
		{"mime wins over misleading suffix", "a.png", "image/heic", types.CategoryHeicLike},
		{"mime checked before suffix", "a.heic", "image/jpeg", types.CategoryJpegLike},
		{"png", "a.png", "image/png", types.CategoryUnsupported},
		{"no extension", "README", "", types.CategoryUnsupported},
		{"suffix only inside name", "heic.txt", "", types.CategoryUnsupported},
		{"empty", "", "", types.CategoryUnsupported},
		{"garbage mime", "a.txt", ";;;", types.CategoryUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyName(tt.filename, tt.mimeType))
		})
	}
}

func TestClassify_IsTotalAndDeterministic(t *testing.T) {
	// 모든 (mime, 파일명) 조합은 정확히 하나의 카테고리를 반환해야 한다.
	mimes := []string{"", "image/heic", "image/heif", "image/jpeg", "image/jpg", "image/png", "text/plain", "IMAGE/JPEG", "bogus"}
	names := []string{"", "a", "a.heic", "a.HEIC", "a.heif", "a.jpg", "a.JPEG", "a.png", "a.heic.png", ".jpg"}
	valid := map[types.FileCategory]bool{
		types.CategoryHeicLike:    true,
		types.CategoryJpegLike:    true,
		types.CategoryUnsupported: true,
	}

	for _, m := range mimes {
		for _, n := range names {
			file := types.NewMemoryFile(n, m, nil)
			first := Classify(file)
			assert.True(t, valid[first], "mime=%q name=%q got %q", m, n, first)
			assert.Equal(t, first, Classify(file), "mime=%q name=%q not deterministic", m, n)
		}
	}
}

func TestHeicSuffixes_ReturnsCopy(t *testing.T) {
	s := HeicSuffixes()
	s[0] = ".mutated"
	assert.Equal(t, ".heic", HeicSuffixes()[0])
}
