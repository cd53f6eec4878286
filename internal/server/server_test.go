package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fcortes/goalcut/internal/server"
	"github.com/fcortes/goalcut/internal/task"
)

// fakeRunner records submissions and serves tasks from a fixed map.
type fakeRunner struct {
	tasks map[string]*task.Task

	shortenURL  string
	shortenGoal string
	shortenID   string

	analyzePath string
	analyzeID   string

	cancelled []string
}

func (f *fakeRunner) SubmitShorten(_ context.Context, url, goal, _ string) string {
	f.shortenURL = url
	f.shortenGoal = goal
	return f.shortenID
}

func (f *fakeRunner) SubmitAnalyze(_ context.Context, path, _ string) string {
	f.analyzePath = path
	return f.analyzeID
}

func (f *fakeRunner) Cancel(id string) {
	f.cancelled = append(f.cancelled, id)
}

func (f *fakeRunner) Task(id string) (*task.Task, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, task.ErrNotFound
}

func newTestServer(t *testing.T, runner *fakeRunner) (*server.Server, string) {
	t.Helper()
	dir := t.TempDir()
	s := server.New(context.Background(), runner, dir,
		server.WithLogger(log.New(io.Discard, "", 0)))
	return s, dir
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestProcessAccepted(t *testing.T) {
	runner := &fakeRunner{shortenID: "task-1"}
	s, _ := newTestServer(t, runner)

	body := strings.NewReader(`{"url": "https://www.youtube.com/watch?v=abc", "goal": "learn knots"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body)
	}
	resp := decodeBody[map[string]string](t, rec)
	if resp["task_id"] != "task-1" || resp["status"] != "pending" {
		t.Errorf("response = %v", resp)
	}
	if runner.shortenURL != "https://www.youtube.com/watch?v=abc" || runner.shortenGoal != "learn knots" {
		t.Errorf("submitted url=%q goal=%q", runner.shortenURL, runner.shortenGoal)
	}
}

func TestProcessValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", "{not json"},
		{"missing goal", `{"url": "https://youtu.be/abc"}`},
		{"missing url", `{"goal": "something"}`},
		{"blank fields", `{"url": "  ", "goal": "  "}`},
		{"unsupported URL", `{"url": "https://example.com/clip.mp4", "goal": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{shortenID: "should-not-happen"}
			s, _ := newTestServer(t, runner)

			req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if runner.shortenURL != "" {
				t.Error("invalid request must not reach the runner")
			}
		})
	}
}

func multipartUpload(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeAccepted(t *testing.T) {
	runner := &fakeRunner{analyzeID: "task-2"}
	s, dir := newTestServer(t, runner)

	body, contentType := multipartUpload(t, "file", "lecture.mp4", "video/mp4", "fake mp4 bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body)
	}
	if filepath.Dir(runner.analyzePath) != dir {
		t.Errorf("staged path %q not under work dir %q", runner.analyzePath, dir)
	}
	data, err := os.ReadFile(runner.analyzePath)
	if err != nil {
		t.Fatalf("staged file unreadable: %v", err)
	}
	if string(data) != "fake mp4 bytes" {
		t.Errorf("staged content = %q", data)
	}
}

func TestAnalyzeRejectsUnsupportedType(t *testing.T) {
	runner := &fakeRunner{analyzeID: "nope"}
	s, _ := newTestServer(t, runner)

	body, contentType := multipartUpload(t, "file", "report.pdf", "application/pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415: %s", rec.Code, rec.Body)
	}
	if runner.analyzePath != "" {
		t.Error("rejected upload must not reach the runner")
	}
}

func TestAnalyzeEnforcesUploadCap(t *testing.T) {
	runner := &fakeRunner{analyzeID: "nope"}
	dir := t.TempDir()
	s := server.New(context.Background(), runner, dir,
		server.WithLogger(log.New(io.Discard, "", 0)),
		server.WithMaxUploadBytes(64))

	body, contentType := multipartUpload(t, "file", "big.mp4", "video/mp4", strings.Repeat("x", 1024))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", rec.Code, rec.Body)
	}
}

func TestAnalyzeRequiresFileField(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	body, contentType := multipartUpload(t, "wrong", "clip.mp4", "video/mp4", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	runner := &fakeRunner{tasks: map[string]*task.Task{
		"task-1": {ID: "task-1", Status: task.StatusTranscribing, Progress: 42},
	}}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/api/status/task-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decodeBody[task.Task](t, rec)
	if got.ID != "task-1" || got.Status != task.StatusTranscribing || got.Progress != 42 {
		t.Errorf("got %+v", got)
	}
}

func TestStatusUnknown(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/status/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestVideoServesCompiledFile(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "task-1-short.mp4")
	if err := os.WriteFile(videoPath, []byte("compiled video"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{tasks: map[string]*task.Task{
		"task-1": {
			ID:     "task-1",
			Status: task.StatusCompleted,
			Result: &task.Result{VideoPath: videoPath},
		},
	}}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/api/video/task-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "compiled video" {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestVideoBeforeCompletion(t *testing.T) {
	runner := &fakeRunner{tasks: map[string]*task.Task{
		"task-1": {ID: "task-1", Status: task.StatusCompiling},
	}}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/api/video/task-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestVideoFileGone(t *testing.T) {
	runner := &fakeRunner{tasks: map[string]*task.Task{
		"task-1": {
			ID:     "task-1",
			Status: task.StatusCompleted,
			Result: &task.Result{VideoPath: filepath.Join(t.TempDir(), "vanished.mp4")},
		},
	}}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/api/video/task-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
}

func TestCancel(t *testing.T) {
	runner := &fakeRunner{tasks: map[string]*task.Task{
		"task-1": {ID: "task-1", Status: task.StatusTranscribing},
	}}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/cancel/task-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(runner.cancelled) != 1 || runner.cancelled[0] != "task-1" {
		t.Errorf("cancelled = %v", runner.cancelled)
	}
}

func TestCancelUnknown(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/cancel/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if len(runner.cancelled) != 0 {
		t.Error("unknown id must not be forwarded to the runner")
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodOptions, "/api/process", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
