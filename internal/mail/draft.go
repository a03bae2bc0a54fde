// Package mail derives the email draft that accompanies a converted batch.
package mail

import (
	"strings"
	"time"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

const (
	// DefaultSubject is used when no usable capture date is available.
	DefaultSubject = "Converted JPG Images"
	// BodyTemplate is the fixed message body.
	BodyTemplate = "Please find the attached JPG images."

	exifDateLayout = "2006:01:02"
)

// Draft is a composed email draft.
type Draft struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Link      string `json:"link"`
}

// Compose builds the draft for recipient from the batch's capture metadata.
func Compose(recipient string, meta *types.CaptureMetadata) Draft {
	subject := Subject(meta)
	return Draft{
		Recipient: recipient,
		Subject:   subject,
		Body:      BodyTemplate,
		Link:      MailtoLink(recipient, subject, BodyTemplate),
	}
}

// Subject returns "Photos from YYYY-MM-DD" when meta carries a parseable
// capture date, DefaultSubject otherwise. It never fails.
func Subject(meta *types.CaptureMetadata) string {
	if meta == nil {
		return DefaultSubject
	}
	date, ok := CaptureDate(meta.CaptureDateTime)
	if !ok {
		return DefaultSubject
	}
	return "Photos from " + date
}

// CaptureDate converts "YYYY:MM:DD HH:MM:SS" into "YYYY-MM-DD".
// Only the part before the first space is considered.
func CaptureDate(raw string) (string, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\x00", ""))
	if raw == "" {
		return "", false
	}

	datePart, _, _ := strings.Cut(raw, " ")
	t, err := time.Parse(exifDateLayout, datePart)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// MailtoLink assembles a mailto URI with percent-encoded subject and body.
// The recipient is encoded the same way but keeps '@' readable.
func MailtoLink(recipient, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(strings.ReplaceAll(encodeComponent(strings.TrimSpace(recipient)), "%40", "@"))
	b.WriteString("?subject=")
	b.WriteString(encodeComponent(subject))
	b.WriteString("&body=")
	b.WriteString(encodeComponent(body))
	return b.String()
}

// encodeComponent percent-encodes every UTF-8 byte of s except letters,
// digits and - _ . ! ~ * ' ( ), the set browsers leave alone in
// encodeURIComponent. Spaces become %20.
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
