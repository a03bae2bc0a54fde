// Package policy decides what happens when an output name is already taken.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

const maxSuffix = 10000

type ConflictResolver struct {
	policy types.ConflictPolicy
}

func NewConflictResolver(policy types.ConflictPolicy) *ConflictResolver {
	return &ConflictResolver{policy: policy}
}

type Resolution struct {
	Action   types.WriteAction
	DestPath string
	Skip     bool
}

// Resolve checks destPath on disk and applies the policy if it exists.
func (c *ConflictResolver) Resolve(destPath string) Resolution {
	if _, err := os.Stat(destPath); os.IsNotExist(err) {
		return Resolution{Action: types.WriteActionWritten, DestPath: destPath}
	}

	switch c.policy {
	case types.ConflictPolicyOverwrite:
		return Resolution{Action: types.WriteActionOverwritten, DestPath: destPath}

	case types.ConflictPolicyRename:
		newPath := c.generateUniqueName(destPath)
		return Resolution{Action: types.WriteActionRenamed, DestPath: newPath}

	default:
		return Resolution{Action: types.WriteActionSkipped, Skip: true}
	}
}

func (c *ConflictResolver) generateUniqueName(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	for i := 1; i < maxSuffix; i++ {
		newPath := filepath.Join(dir, suffixed(base, i))
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	return path
}

// NameSet hands out unique names within one batch, e.g. for entries of an
// archive where a.heic and a.jpg would both become a.jpg.
type NameSet struct {
	taken map[string]bool
}

func NewNameSet() *NameSet {
	return &NameSet{taken: make(map[string]bool)}
}

// Claim returns name, or name with a _N suffix before the extension if it
// was claimed before. Comparison is case-insensitive.
func (s *NameSet) Claim(name string) string {
	candidate := name
	for i := 1; s.taken[strings.ToLower(candidate)] && i < maxSuffix; i++ {
		candidate = suffixed(name, i)
	}
	s.taken[strings.ToLower(candidate)] = true
	return candidate
}

func suffixed(name string, i int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
}
