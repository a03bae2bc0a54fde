package pipeline

import "github.com/On-Jun9/HeicPipe/pkg/types"

type ProgressCallback func(update ProgressUpdate)

// Progress update types.
const (
	UpdateStatus   = "status"
	UpdateFile     = "file"
	UpdateWarning  = "warning"
	UpdateComplete = "complete"
	UpdateError    = "error"
)

type ProgressUpdate struct {
	Type     string              `json:"type"`
	Message  string              `json:"message,omitempty"`
	Current  int                 `json:"current,omitempty"`
	Total    int                 `json:"total,omitempty"`
	Filename string              `json:"filename,omitempty"`
	State    types.FileState     `json:"state,omitempty"`
	Summary  *types.BatchSummary `json:"summary,omitempty"`
	Error    string              `json:"error,omitempty"`
}
