// Package scanner gathers input files from paths given on the command line.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

type Scanner struct {
	sniff bool
}

// New returns a Scanner. With sniff set the declared MIME type of every
// file is detected from its content; otherwise it is left empty and
// classification falls back to the filename.
func New(sniff bool) *Scanner {
	return &Scanner{sniff: sniff}
}

// Scan expands paths into input files, preserving argument order.
// Directories are walked in lexical order; hidden entries and partial
// writes are ignored.
func (s *Scanner) Scan(paths ...string) ([]types.InputFile, error) {
	var files []types.InputFile

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, s.entry(root, info))
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root && isIgnored(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}

			files = append(files, s.entry(path, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	return files, nil
}

func (s *Scanner) entry(path string, info os.FileInfo) types.InputFile {
	return types.NewPathFile(path, info.Name(), s.detect(path), info.Size())
}

// detect returns the sniffed MIME type or "" when it cannot be read.
func (s *Scanner) detect(path string) string {
	if !s.sniff {
		return ""
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mt.String()
}

func isIgnored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part")
}
