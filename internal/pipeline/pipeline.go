// Package pipeline runs one conversion batch: classify every input, convert
// or pass it through, and fold the outcomes into a BatchResult.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/On-Jun9/HeicPipe/internal/classify"
	"github.com/On-Jun9/HeicPipe/internal/codec"
	"github.com/On-Jun9/HeicPipe/internal/config"
	"github.com/On-Jun9/HeicPipe/internal/log"
	"github.com/On-Jun9/HeicPipe/internal/mail"
	"github.com/On-Jun9/HeicPipe/pkg/types"
)

const (
	MsgNoFiles      = "Please select at least one HEIC file."
	MsgNoRecipient  = "Please enter a recipient email address."
	MsgFailedPrefix = "An error occurred during conversion: "
)

// MetadataExtractor reads capture metadata from raw image bytes.
type MetadataExtractor interface {
	Extract(ctx context.Context, data []byte) (*types.CaptureMetadata, error)
}

// BatchError reports a failure that aborted the batch. The partial result
// returned next to it stays valid.
type BatchError struct {
	// Processed is the number of outcomes recorded before the failure.
	Processed int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch aborted after %d file(s): %v", e.Processed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	meta             MetadataExtractor
	codec            codec.Service
	logger           *log.Logger
	progressCallback ProgressCallback
	now              func() time.Time
}

type Option func(*Pipeline)

func WithProgressCallback(cb ProgressCallback) Option {
	return func(p *Pipeline) { p.progressCallback = cb }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(extractor MetadataExtractor, svc codec.Service, logger *log.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	p := &Pipeline{
		meta:   extractor,
		codec:  svc,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

// Validate checks the batch inputs. It returns a *config.ValidationError.
func Validate(files []types.InputFile, quality types.Quality, recipient string) error {
	if len(files) == 0 {
		return &config.ValidationError{Field: "files", Message: MsgNoFiles}
	}
	if strings.TrimSpace(recipient) == "" {
		return &config.ValidationError{Field: "recipient", Message: MsgNoRecipient}
	}
	if !quality.Valid() {
		return &config.ValidationError{Field: "quality", Message: types.ErrQualityOutOfRange.Error()}
	}
	return nil
}

// Run processes files in order. Per-file problems become Skipped outcomes;
// anything else stops the batch and returns the partial result together
// with a *BatchError. Validation failures return no result.
func (p *Pipeline) Run(ctx context.Context, files []types.InputFile, quality types.Quality, recipient string) (result *types.BatchResult, err error) {
	if err := Validate(files, quality, recipient); err != nil {
		return nil, err
	}

	recipient = strings.TrimSpace(recipient)
	result = &types.BatchResult{
		Outcomes:          make([]types.FileOutcome, 0, len(files)),
		Recipient:         recipient,
		EmailBodyTemplate: mail.BodyTemplate,
		Summary: types.BatchSummary{
			TotalFiles: len(files),
			StartTime:  p.now(),
		},
	}

	defer func() {
		if r := recover(); r != nil {
			err = p.fail(result, fmt.Errorf("panic: %v", r))
		}
	}()

	p.logger.Info(fmt.Sprintf("Starting batch: %d file(s), quality %d%%", len(files), quality.Percent()))
	p.emit(ProgressUpdate{
		Type:    UpdateStatus,
		Message: fmt.Sprintf("Converting %d file(s)...", len(files)),
		Total:   len(files),
	})

	// An unreadable first file only costs the metadata here; processFile
	// decides whether the same read error is fatal for its category.
	first, err := files[0].Bytes()
	if err != nil {
		p.logger.Warn(fmt.Sprintf("Could not read metadata from %s: %v", files[0].Name, err))
		first = nil
	} else {
		result.Metadata = p.extractMetadata(ctx, files[0].Name, first)
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, p.fail(result, err)
		}

		var data []byte
		if i == 0 {
			data = first
		}

		started := p.now()
		outcome, bytesIn, err := p.processFile(ctx, file, data, quality)
		if err != nil {
			return result, p.fail(result, err)
		}

		result.Outcomes = append(result.Outcomes, outcome)
		result.Summary.Record(outcome, bytesIn)
		p.logger.LogOutcome(outcome, p.now().Sub(started))
		p.logger.Progress(i+1, len(files), file.Name)

		p.emit(ProgressUpdate{
			Type:     UpdateFile,
			Current:  i + 1,
			Total:    len(files),
			Filename: file.Name,
			State:    outcome.State(),
		})

		if outcome.Kind == types.OutcomeSkipped {
			result.Warnings = append(result.Warnings, outcome.Warning)
			p.emit(ProgressUpdate{
				Type:     UpdateWarning,
				Message:  outcome.Warning,
				Filename: file.Name,
				State:    outcome.State(),
			})
		}
	}

	p.finish(result)
	p.logger.Summary(result.Summary)
	p.emit(ProgressUpdate{
		Type:    UpdateComplete,
		Message: result.SummaryWarning(),
		Summary: &result.Summary,
	})

	return result, nil
}

// processFile classifies one file and produces its outcome. data is the
// already-read payload or nil. A non-nil error is fatal to the batch.
func (p *Pipeline) processFile(ctx context.Context, file types.InputFile, data []byte, quality types.Quality) (types.FileOutcome, int, error) {
	category := classify.Classify(file)

	if category == types.CategoryUnsupported {
		warning := fmt.Sprintf("Skipped %s: unsupported file type", file.Name)
		return types.Skipped(file.Name, types.SkipUnsupportedType, warning), 0, nil
	}

	if data == nil {
		var err error
		data, err = file.Bytes()
		if err != nil {
			return types.FileOutcome{}, 0, fmt.Errorf("read %s: %w", file.Name, err)
		}
	}

	if category == types.CategoryJpegLike {
		return types.PassedThrough(file.Name, data), len(data), nil
	}

	out, err := p.codec.ToJPEG(ctx, data, quality)
	if err != nil {
		if errors.Is(err, codec.ErrUnavailable) {
			return types.FileOutcome{}, 0, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.FileOutcome{}, 0, ctxErr
		}
		p.logger.Error("Conversion failed for "+file.Name, err)
		warning := fmt.Sprintf("Could not convert %s: %v", file.Name, err)
		return types.Skipped(file.Name, types.SkipConversionFailed, warning), len(data), nil
	}

	return types.Converted(file.Name, OutputName(file.Name), out), len(data), nil
}

// extractMetadata never fails; problems are logged and yield nil.
func (p *Pipeline) extractMetadata(ctx context.Context, name string, data []byte) *types.CaptureMetadata {
	if p.meta == nil {
		return nil
	}

	meta, err := p.meta.Extract(ctx, data)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("Could not read metadata from %s: %v", name, err))
		return nil
	}
	return meta
}

// finish composes the email draft from whatever was gathered so far.
func (p *Pipeline) finish(result *types.BatchResult) {
	draft := mail.Compose(result.Recipient, result.Metadata)
	result.EmailSubject = draft.Subject
	result.EmailBodyTemplate = draft.Body
	result.MailtoLink = draft.Link

	result.Summary.EndTime = p.now()
	result.Summary.Duration = result.Summary.EndTime.Sub(result.Summary.StartTime)
}

func (p *Pipeline) fail(result *types.BatchResult, cause error) error {
	p.finish(result)
	result.Failed = true
	result.FailureMessage = MsgFailedPrefix + cause.Error()

	p.logger.Error("Batch aborted", cause)
	p.logger.Summary(result.Summary)
	p.emit(ProgressUpdate{
		Type:    UpdateError,
		Message: result.FailureMessage,
		Error:   cause.Error(),
		Summary: &result.Summary,
	})

	return &BatchError{Processed: len(result.Outcomes), Err: cause}
}

func (p *Pipeline) emit(update ProgressUpdate) {
	if p.progressCallback != nil {
		p.progressCallback(update)
	}
}
