package metadata

import (
	"context"
	"errors"
	"testing"
)

// TestExtractorExtract_ReadsCaptureTimeFromTIFF는 테스트 코드 동작을 검증하거나 보조합니다.
func TestExtractorExtract_ReadsCaptureTimeFromTIFF(t *testing.T) {
	// 구조 파서가 놓치더라도 goexif fallback으로 촬영 시간을 읽어야 한다.
	data := tiffWithASCIITag(0x9003, "2024:03:15 10:22:00")

	meta, err := New().Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CaptureDateTime != "2024:03:15 10:22:00" {
		t.Fatalf("unexpected capture time: %q", meta.CaptureDateTime)
	}
	if meta.Source == "" {
		t.Fatal("expected source to be set")
	}
}

// TestExtractorExtract_ReturnsErrNoMetadataForPlainBytes는 테스트 코드 동작을 검증하거나 보조합니다.
func TestExtractorExtract_ReturnsErrNoMetadataForPlainBytes(t *testing.T) {
	meta, err := New().Extract(context.Background(), []byte("plain text, no exif here"))
	if !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
	if meta != nil {
		t.Fatalf("expected nil metadata, got %+v", meta)
	}
}

// TestExtractorExtract_ReturnsErrNoMetadataForEmptyPayload는 테스트 코드 동작을 검증하거나 보조합니다.
func TestExtractorExtract_ReturnsErrNoMetadataForEmptyPayload(t *testing.T) {
	if _, err := New().Extract(context.Background(), nil); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

// TestExtractorExtract_NeverPanicsOnTruncatedContainers는 테스트 코드 동작을 검증하거나 보조합니다.
func TestExtractorExtract_NeverPanicsOnTruncatedContainers(t *testing.T) {
	// 잘린 컨테이너 입력에도 panic 없이 에러로 끝나야 한다.
	inputs := [][]byte{
		{0xFF, 0xD8, 0xFF, 0xE1, 0x00},                                   // truncated JPEG APP1
		{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}, // truncated HEIC ftyp
		{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00},              // truncated PNG
		{0x49, 0x49, 0x2A, 0x00, 0xFF, 0xFF, 0x00, 0x00},                 // TIFF with bad IFD offset
	}

	for i, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("input %d panicked: %v", i, r)
				}
			}()
			_, _ = New().Extract(context.Background(), in)
		}()
	}
}

// TestExtractorExtract_HonorsCancelledContext는 테스트 코드 동작을 검증하거나 보조합니다.
func TestExtractorExtract_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Extract(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
