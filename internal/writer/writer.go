// Package writer saves batch outputs to a directory.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/On-Jun9/HeicPipe/internal/policy"
	"github.com/On-Jun9/HeicPipe/internal/verify"
	"github.com/On-Jun9/HeicPipe/pkg/types"
)

type Writer struct {
	dir      string
	dryRun   bool
	resolver *policy.ConflictResolver
	verifier *verify.Verifier
}

// New returns a Writer for dir. With verifyOutputs set every written file
// is read back and compared by hash.
func New(dir string, conflict types.ConflictPolicy, dryRun, verifyOutputs bool) *Writer {
	return &Writer{
		dir:      dir,
		dryRun:   dryRun,
		resolver: policy.NewConflictResolver(conflict),
		verifier: verify.New(verifyOutputs),
	}
}

// WriteAll writes every outcome that carries output, in order. Names that
// collide within the batch get a _N suffix before the disk policy applies.
func (w *Writer) WriteAll(outcomes []types.FileOutcome) []types.WriteTask {
	names := policy.NewNameSet()
	tasks := make([]types.WriteTask, 0, len(outcomes))

	for i, o := range outcomes {
		if !o.HasOutput() {
			continue
		}
		task := w.write(o, names.Claim(o.OutputName))
		task.Index = i
		tasks = append(tasks, task)
	}

	return tasks
}

func (w *Writer) write(o types.FileOutcome, name string) types.WriteTask {
	task := types.WriteTask{Outcome: o, DestPath: filepath.Join(w.dir, name)}

	resolution := w.resolver.Resolve(task.DestPath)
	task.Action = resolution.Action
	if resolution.Skip {
		return task
	}
	task.DestPath = resolution.DestPath

	if w.dryRun {
		return task
	}

	if err := os.MkdirAll(filepath.Dir(task.DestPath), 0755); err != nil {
		return failed(task, err)
	}

	partPath := task.DestPath + ".part"
	if err := atomicWrite(o.OutputBytes, partPath, task.DestPath); err != nil {
		os.Remove(partPath)
		return failed(task, err)
	}

	if err := w.verifier.Verify(task.DestPath, o.OutputBytes); err != nil {
		return failed(task, fmt.Errorf("verify: %w", err))
	}

	return task
}

func failed(task types.WriteTask, err error) types.WriteTask {
	task.Action = types.WriteActionFailed
	task.Error = err.Error()
	return task
}

func atomicWrite(data []byte, partDest, finalDest string) error {
	dstFile, err := os.Create(partDest)
	if err != nil {
		return err
	}

	_, err = dstFile.Write(data)
	if syncErr := dstFile.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := dstFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	return os.Rename(partDest, finalDest)
}
