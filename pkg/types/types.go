// Package types defines core data structures used across HeicPipe modules.
package types

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// InputFile represents one file selected by the user.
// The payload is read lazily through Bytes; callers own the file for the
// duration of a batch and the pipeline only reads it.
type InputFile struct {
	// Name is the base filename as supplied by the user.
	Name string
	// DeclaredMimeType is the MIME type reported by the host. May be empty or wrong.
	DeclaredMimeType string
	// Size is the payload size in bytes, or 0 if unknown.
	Size int64

	open func() ([]byte, error)
}

// NewMemoryFile wraps an in-memory payload.
func NewMemoryFile(name, mimeType string, data []byte) InputFile {
	return InputFile{
		Name:             name,
		DeclaredMimeType: mimeType,
		Size:             int64(len(data)),
		open: func() ([]byte, error) {
			return data, nil
		},
	}
}

// NewPathFile returns an InputFile whose payload is read from path on demand.
func NewPathFile(path, name, mimeType string, size int64) InputFile {
	return InputFile{
		Name:             name,
		DeclaredMimeType: mimeType,
		Size:             size,
		open: func() ([]byte, error) {
			return os.ReadFile(path)
		},
	}
}

// NewLazyFile returns an InputFile backed by an arbitrary reader function.
func NewLazyFile(name, mimeType string, size int64, open func() ([]byte, error)) InputFile {
	return InputFile{Name: name, DeclaredMimeType: mimeType, Size: size, open: open}
}

// Bytes reads the payload.
func (f InputFile) Bytes() ([]byte, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%s: no payload", f.Name)
	}
	return f.open()
}

// FileCategory is the classification of an input file.
type FileCategory string

const (
	CategoryHeicLike    FileCategory = "heic-like"
	CategoryJpegLike    FileCategory = "jpeg-like"
	CategoryUnsupported FileCategory = "unsupported"
)

// ErrQualityOutOfRange is returned for quality percentages outside [1,100].
var ErrQualityOutOfRange = errors.New("quality must be between 1 and 100")

// Quality is a conversion quality factor in (0, 1].
type Quality float64

// QualityFromPercent maps a user-facing percentage to a quality factor.
func QualityFromPercent(percent int) (Quality, error) {
	if percent < 1 || percent > 100 {
		return 0, fmt.Errorf("%w: got %d", ErrQualityOutOfRange, percent)
	}
	return Quality(float64(percent) / 100), nil
}

// Valid reports whether q is inside (0, 1].
func (q Quality) Valid() bool {
	f := float64(q)
	return !math.IsNaN(f) && f > 0 && f <= 1
}

// Percent returns q as a JPEG encoder quality in [1,100].
func (q Quality) Percent() int {
	p := int(math.Round(float64(q) * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}

// OutcomeKind identifies which variant a FileOutcome holds.
type OutcomeKind string

const (
	OutcomeConverted     OutcomeKind = "converted"
	OutcomePassedThrough OutcomeKind = "passed-through"
	OutcomeSkipped       OutcomeKind = "skipped"
)

// SkipReason explains why a file produced no output.
type SkipReason string

const (
	SkipUnsupportedType  SkipReason = "unsupported-type"
	SkipConversionFailed SkipReason = "conversion-failed"
)

// Describe returns a short human-readable form of the reason.
func (r SkipReason) Describe() string {
	switch r {
	case SkipUnsupportedType:
		return "unsupported file type"
	case SkipConversionFailed:
		return "conversion failed"
	default:
		return string(r)
	}
}

// FileState tracks a file through the batch.
type FileState string

const (
	FileStatePending            FileState = "pending"
	FileStateClassified         FileState = "classified"
	FileStateConverted          FileState = "converted"
	FileStatePassedThrough      FileState = "passed-through"
	FileStateSkippedUnsupported FileState = "skipped-unsupported"
	FileStateSkippedFailed      FileState = "skipped-failed"
)

// FileOutcome is the result of processing one InputFile.
type FileOutcome struct {
	// Kind selects the variant.
	Kind OutcomeKind `json:"kind"`
	// OriginalName is the input filename.
	OriginalName string `json:"original_name"`
	// OutputName is the downloadable filename. Empty for skipped files.
	OutputName string `json:"output_name,omitempty"`
	// OutputBytes is the downloadable payload. Nil for skipped files.
	OutputBytes []byte `json:"-"`
	// OutputSize mirrors len(OutputBytes) for presenters.
	OutputSize int `json:"output_size,omitempty"`
	// SkipReason is set only for skipped files.
	SkipReason SkipReason `json:"skip_reason,omitempty"`
	// Warning is the user-facing message for skipped files.
	Warning string `json:"warning,omitempty"`
}

// Converted builds the outcome of a successful re-encode.
func Converted(originalName, outputName string, data []byte) FileOutcome {
	return FileOutcome{
		Kind:         OutcomeConverted,
		OriginalName: originalName,
		OutputName:   outputName,
		OutputBytes:  data,
		OutputSize:   len(data),
	}
}

// PassedThrough builds the outcome of a file that already is a JPEG.
func PassedThrough(name string, data []byte) FileOutcome {
	return FileOutcome{
		Kind:         OutcomePassedThrough,
		OriginalName: name,
		OutputName:   name,
		OutputBytes:  data,
		OutputSize:   len(data),
	}
}

// Skipped builds the outcome of a file that produced no output.
func Skipped(originalName string, reason SkipReason, warning string) FileOutcome {
	return FileOutcome{
		Kind:         OutcomeSkipped,
		OriginalName: originalName,
		SkipReason:   reason,
		Warning:      warning,
	}
}

// HasOutput reports whether the outcome carries a downloadable payload.
func (o FileOutcome) HasOutput() bool {
	return o.Kind == OutcomeConverted || o.Kind == OutcomePassedThrough
}

// State returns the terminal FileState for the outcome.
func (o FileOutcome) State() FileState {
	switch o.Kind {
	case OutcomeConverted:
		return FileStateConverted
	case OutcomePassedThrough:
		return FileStatePassedThrough
	}
	if o.SkipReason == SkipConversionFailed {
		return FileStateSkippedFailed
	}
	return FileStateSkippedUnsupported
}

// CaptureMetadata contains metadata extracted from the first file of a batch.
type CaptureMetadata struct {
	// CaptureDateTime is the raw DateTimeOriginal value ("YYYY:MM:DD HH:MM:SS").
	// Empty if the tag was not present.
	CaptureDateTime string `json:"capture_date_time,omitempty"`
	// Tags maps tag names to their formatted descriptions.
	Tags map[string]string `json:"tags,omitempty"`
	// Source indicates which parser produced the tags (e.g., "EXIF:heic", "EXIF:goexif").
	Source string `json:"source,omitempty"`
}

// BatchSummary contains statistics for a completed batch.
type BatchSummary struct {
	TotalFiles         int           `json:"total_files"`
	Processed          int           `json:"processed"`
	Converted          int           `json:"converted"`
	PassedThrough      int           `json:"passed_through"`
	SkippedUnsupported int           `json:"skipped_unsupported"`
	SkippedFailed      int           `json:"skipped_failed"`
	BytesIn            int64         `json:"bytes_in"`
	BytesOut           int64         `json:"bytes_out"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            time.Time     `json:"end_time"`
	Duration           time.Duration `json:"duration"`
}

// Record adds an outcome to the counters.
func (s *BatchSummary) Record(o FileOutcome, bytesIn int) {
	s.Processed++
	s.BytesIn += int64(bytesIn)
	s.BytesOut += int64(len(o.OutputBytes))

	switch o.State() {
	case FileStateConverted:
		s.Converted++
	case FileStatePassedThrough:
		s.PassedThrough++
	case FileStateSkippedFailed:
		s.SkippedFailed++
	default:
		s.SkippedUnsupported++
	}
}

// BatchResult is the aggregate result of one batch run.
// It is handed to the presenter and then discarded.
type BatchResult struct {
	Outcomes          []FileOutcome    `json:"outcomes"`
	Metadata          *CaptureMetadata `json:"metadata,omitempty"`
	Recipient         string           `json:"recipient"`
	EmailSubject      string           `json:"email_subject"`
	EmailBodyTemplate string           `json:"email_body_template"`
	MailtoLink        string           `json:"mailto_link"`
	Warnings          []string         `json:"warnings,omitempty"`
	// Failed is set when an unexpected error aborted the batch.
	// Outcomes then hold only the files processed before the failure.
	Failed         bool         `json:"failed"`
	FailureMessage string       `json:"failure_message,omitempty"`
	Summary        BatchSummary `json:"summary"`
}

// Skipped returns the skipped outcomes in input order.
func (r *BatchResult) Skipped() []FileOutcome {
	var skipped []FileOutcome
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeSkipped {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

// SummaryWarning folds per-file problems into one batch-level message.
// Returns "" when every file produced output.
func (r *BatchResult) SummaryWarning() string {
	skipped := r.Skipped()
	if len(skipped) == 0 {
		return ""
	}

	parts := make([]string, 0, len(skipped))
	for _, o := range skipped {
		parts = append(parts, fmt.Sprintf("%s (%s)", o.OriginalName, o.SkipReason.Describe()))
	}
	return fmt.Sprintf("%d file(s) were skipped: %s", len(skipped), strings.Join(parts, ", "))
}

// ConflictPolicy defines how to handle an output name that already exists.
type ConflictPolicy string

const (
	ConflictPolicySkip      ConflictPolicy = "skip"
	ConflictPolicyRename    ConflictPolicy = "rename"
	ConflictPolicyOverwrite ConflictPolicy = "overwrite"
)

// WriteAction represents the action taken when saving an output.
type WriteAction string

const (
	WriteActionWritten     WriteAction = "written"
	WriteActionSkipped     WriteAction = "skipped"
	WriteActionRenamed     WriteAction = "renamed"
	WriteActionOverwritten WriteAction = "overwritten"
	WriteActionFailed      WriteAction = "failed"
)

// WriteTask represents a planned write of one outcome to disk.
type WriteTask struct {
	// Index is the position of Outcome in the batch result.
	Index int
	// Outcome is the outcome being saved.
	Outcome FileOutcome
	// DestPath is the full destination file path.
	DestPath string
	// Action indicates what action was taken.
	Action WriteAction
	// Error contains error message if the write failed.
	Error string
}
