package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/On-Jun9/HeicPipe/internal/config"
	"github.com/On-Jun9/HeicPipe/internal/pipeline"
	"github.com/On-Jun9/HeicPipe/internal/session"
	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIErrorResponse struct {
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIErrorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ValidationError{
		Field:   field,
		Message: message,
	})
}

// Download is one downloadable output of a session.
type Download struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Size  int    `json:"size"`
	URL   string `json:"url"`
}

// SessionResponse is returned by the convert and session endpoints.
type SessionResponse struct {
	SessionID  string             `json:"session_id"`
	ExpiresAt  string             `json:"expires_at"`
	Result     *types.BatchResult `json:"result"`
	Warning    string             `json:"warning,omitempty"`
	Downloads  []Download         `json:"downloads"`
	ArchiveURL string             `json:"archive_url,omitempty"`
}

func newSessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		Result:    sess.Result,
		Warning:   sess.Result.SummaryWarning(),
		Downloads: []Download{},
	}

	for i, o := range sess.Result.Outcomes {
		if !o.HasOutput() {
			continue
		}
		resp.Downloads = append(resp.Downloads, Download{
			Index: i,
			Name:  sess.Names[i],
			Size:  o.OutputSize,
			URL:   fmt.Sprintf("/api/sessions/%s/files/%d", sess.ID, i),
		})
	}
	if len(resp.Downloads) > 0 {
		resp.ArchiveURL = fmt.Sprintf("/api/sessions/%s/archive", sess.ID)
	}
	return resp
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		writeAPIError(w, http.StatusConflict, "a conversion is already running")
		return
	}
	defer s.runMu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Convert handler panicked", fmt.Errorf("%v", rec))
			s.broadcastProgress(pipeline.ProgressUpdate{Type: pipeline.UpdateError, Error: fmt.Sprintf("Internal Server Error: %v", rec)})
			writeAPIError(w, http.StatusInternalServerError, pipeline.MsgFailedPrefix+fmt.Sprint(rec))
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	quality, err := s.parseQuality(r.FormValue("quality"))
	if err != nil {
		writeValidationError(w, "quality", err.Error())
		return
	}

	files := uploadedFiles(r.MultipartForm.File["files"])

	p := pipeline.New(s.extractor, s.codec, s.logger, pipeline.WithProgressCallback(s.broadcastProgress))
	result, err := p.Run(r.Context(), files, quality, r.FormValue("email"))
	if err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}
		var batchErr *pipeline.BatchError
		if !errors.As(err, &batchErr) || result == nil {
			writeAPIError(w, http.StatusInternalServerError, pipeline.MsgFailedPrefix+err.Error())
			return
		}
		// Partial results stay downloadable; the failure is reported in the body.
	}

	sess := s.store.Put(result)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newSessionResponse(sess))
}

// parseQuality reads a 1-100 percentage; empty means the configured default.
func (s *Server) parseQuality(raw string) (types.Quality, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.cfg.Quality()
	}
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", types.ErrQualityOutOfRange, raw)
	}
	return types.QualityFromPercent(percent)
}

func uploadedFiles(headers []*multipart.FileHeader) []types.InputFile {
	files := make([]types.InputFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, types.NewLazyFile(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, func() ([]byte, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return io.ReadAll(f)
		}))
	}
	return files
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newSessionResponse(sess))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, name, err := sess.Output(index)
	if err != nil {
		writeAPIError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(outcome.OutputBytes)))
	w.Write(outcome.OutputBytes)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment("converted-"+sess.ID[:8]+".zip"))
	if err := sess.WriteArchive(w); err != nil {
		s.logger.Error("Failed to write archive", err)
	}
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.hub.broadcast <- data
}

func (s *Server) broadcastProgress(update pipeline.ProgressUpdate) {
	s.broadcastJSON(update)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": s.version})
}
