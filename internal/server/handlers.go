package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/task"
)

type submitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleProcess accepts a shorten request: a remote video URL plus the
// user's goal. The pipeline runs in the background; 202 carries the id.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url"`
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Goal = strings.TrimSpace(req.Goal)
	if req.URL == "" || req.Goal == "" {
		writeError(w, http.StatusBadRequest, "url and goal are required")
		return
	}
	if !acquire.IsVideoURL(req.URL) {
		writeError(w, http.StatusBadRequest, "not a supported video URL")
		return
	}

	id := s.runner.SubmitShorten(s.baseCtx, req.URL, req.Goal, identityFrom(r))
	s.logger.Printf("accepted shorten task %s for %s", id, req.URL)
	writeJSON(w, http.StatusAccepted, submitResponse{TaskID: id, Status: string(task.StatusPending)})
}

// handleAnalyze accepts a multipart media upload and submits an analyze
// task over the staged copy.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	id := task.NewID()
	contentType := header.Header.Get("Content-Type")
	path, err := acquire.StageUpload(s.workDir, id, header.Filename, contentType, file, s.maxUploadBytes)
	if err != nil {
		switch {
		case errors.Is(err, acquire.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, acquire.ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			s.logger.Printf("staging upload failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not store upload")
		}
		return
	}

	taskID := s.runner.SubmitAnalyze(s.baseCtx, path, identityFrom(r))
	s.logger.Printf("accepted analyze task %s (%s)", taskID, header.Filename)
	writeJSON(w, http.StatusAccepted, submitResponse{TaskID: taskID, Status: string(task.StatusPending)})
}

// handleStatus returns the latest atomically-published task snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	t, err := s.runner.Task(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleVideo serves the compiled output of a completed shorten task.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	t, err := s.runner.Task(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if t.Status != task.StatusCompleted || t.Result == nil || t.Result.VideoPath == "" {
		writeError(w, http.StatusConflict, "no compiled video for this task")
		return
	}
	if _, err := os.Stat(t.Result.VideoPath); err != nil {
		writeError(w, http.StatusGone, "compiled video no longer on disk")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, t.Result.VideoPath)
}

// handleCancel requests cooperative cancellation. Always 202: the worker
// notices at its next chunk boundary, and cancelling a finished task is a
// harmless no-op.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.runner.Task(id); err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.runner.Cancel(id)
	writeJSON(w, http.StatusAccepted, submitResponse{TaskID: id, Status: "cancelling"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
