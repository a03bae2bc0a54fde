package mail

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name string
		meta *types.CaptureMetadata
		want string
	}{
		{"capture date", &types.CaptureMetadata{CaptureDateTime: "2024:03:15 10:22:00"}, "Photos from 2024-03-15"},
		{"date only", &types.CaptureMetadata{CaptureDateTime: "2023:12:31"}, "Photos from 2023-12-31"},
		{"trailing nul", &types.CaptureMetadata{CaptureDateTime: "2024:01:02 03:04:05\x00"}, "Photos from 2024-01-02"},
		{"absent metadata", nil, DefaultSubject},
		{"empty date", &types.CaptureMetadata{}, DefaultSubject},
		{"garbage", &types.CaptureMetadata{CaptureDateTime: "garbage"}, DefaultSubject},
		{"impossible date", &types.CaptureMetadata{CaptureDateTime: "2024:13:45 00:00:00"}, DefaultSubject},
		{"dash separated", &types.CaptureMetadata{CaptureDateTime: "2024-03-15 10:22:00"}, DefaultSubject},
		{"zeroed exif date", &types.CaptureMetadata{CaptureDateTime: "0000:00:00 00:00:00"}, DefaultSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.meta))
		})
	}
}

func TestMailtoLink_EncodesSubjectAndBody(t *testing.T) {
	link := MailtoLink("friend@example.com", "Photos from 2024-03-15", BodyTemplate)

	assert.True(t, strings.HasPrefix(link, "mailto:friend@example.com?"))
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, "+")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "mailto", u.Scheme)
	assert.Equal(t, "friend@example.com", u.Opaque)

	q := u.Query()
	assert.Equal(t, "Photos from 2024-03-15", q.Get("subject"))
	assert.Equal(t, BodyTemplate, q.Get("body"))
}

func TestMailtoLink_EscapesReservedCharacters(t *testing.T) {
	link := MailtoLink("a@b.c", "x&y=z?", "b")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "x&y=z?", u.Query().Get("subject"))
	assert.Equal(t, "b", u.Query().Get("body"))
}

func TestCompose(t *testing.T) {
	d := Compose("me@example.com", &types.CaptureMetadata{CaptureDateTime: "2024:03:15 10:22:00"})

	assert.Equal(t, "me@example.com", d.Recipient)
	assert.Equal(t, "Photos from 2024-03-15", d.Subject)
	assert.Equal(t, BodyTemplate, d.Body)
	assert.Equal(t, "mailto:me@example.com?subject=Photos%20from%202024-03-15&body=Please%20find%20the%20attached%20JPG%20images.", d.Link)
}

// TestEncodeComponent_MatchesBrowserEncoding는 테스트 코드 동작을 검증하거나 보조합니다.
func TestEncodeComponent_MatchesBrowserEncoding(t *testing.T) {
	// 브라우저 encodeURIComponent와 같이 !'()*~ 는 그대로 두고 @, 공백, 한글은 인코딩해야 한다.
	tests := map[string]string{
		"Photos from 2024-03-15": "Photos%20from%202024-03-15",
		"Hi! (it's *me*) ~x":     "Hi!%20(it's%20*me*)%20~x",
		"a@b.c":                  "a%40b.c",
		"a+b&c=d/e?f#g":          "a%2Bb%26c%3Dd%2Fe%3Ff%23g",
		"사진":                     "%EC%82%AC%EC%A7%84",
	}
	for in, want := range tests {
		assert.Equal(t, want, encodeComponent(in), in)
	}
}
