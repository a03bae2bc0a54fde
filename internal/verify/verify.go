// Package verify checks that a written output matches the bytes produced
// for it.
package verify

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

type Verifier struct {
	hashVerify bool
}

func New(hashVerify bool) *Verifier {
	return &Verifier{hashVerify: hashVerify}
}

// Verify compares destPath against expected by size and, when enabled,
// by SHA-256.
func (v *Verifier) Verify(destPath string, expected []byte) error {
	destInfo, err := os.Stat(destPath)
	if err != nil {
		return fmt.Errorf("destination file not found: %w", err)
	}

	if destInfo.Size() != int64(len(expected)) {
		return fmt.Errorf("size mismatch: expected %d, got %d", len(expected), destInfo.Size())
	}

	if !v.hashVerify {
		return nil
	}

	wantHash, err := hashReader(bytes.NewReader(expected))
	if err != nil {
		return fmt.Errorf("failed to hash output: %w", err)
	}

	destHash, err := hashFile(destPath)
	if err != nil {
		return fmt.Errorf("failed to hash destination: %w", err)
	}

	if wantHash != destHash {
		return fmt.Errorf("hash mismatch: want=%s, dest=%s", wantHash, destHash)
	}

	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return hashReader(f)
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
