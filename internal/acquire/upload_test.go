package acquire_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fcortes/goalcut/internal/acquire"
)

func TestStageUpload(t *testing.T) {
	dir := t.TempDir()
	body := strings.NewReader("fake mp4 bytes")

	path, err := acquire.StageUpload(dir, "task-1", "lecture.mp4", "video/mp4", body, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("staged outside work dir: %s", path)
	}
	if filepath.Ext(path) != ".mp4" {
		t.Errorf("extension not preserved: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("staged file unreadable: %v", err)
	}
	if string(data) != "fake mp4 bytes" {
		t.Errorf("staged content = %q", data)
	}
}

func TestStageUploadRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()

	_, err := acquire.StageUpload(dir, "task-1", "report.pdf", "application/pdf",
		strings.NewReader("%PDF"), 1<<20)
	if !errors.Is(err, acquire.ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("rejected upload left %d files on disk", len(entries))
	}
}

func TestStageUploadEnforcesSizeCap(t *testing.T) {
	dir := t.TempDir()
	body := strings.NewReader(strings.Repeat("x", 100))

	_, err := acquire.StageUpload(dir, "task-1", "big.mp4", "video/mp4", body, 50)
	if !errors.Is(err, acquire.ErrFileTooLarge) {
		t.Fatalf("error = %v, want ErrFileTooLarge", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("oversized upload left %d files on disk", len(entries))
	}
}

func TestStageUploadExactlyAtCap(t *testing.T) {
	dir := t.TempDir()
	body := strings.NewReader(strings.Repeat("x", 50))

	if _, err := acquire.StageUpload(dir, "task-1", "ok.wav", "audio/wav", body, 50); err != nil {
		t.Fatalf("upload exactly at cap must succeed, got: %v", err)
	}
}

func TestAllowedUploadType(t *testing.T) {
	for _, ct := range []string{"video/mp4", "audio/mpeg", "audio/wav", "video/webm"} {
		if !acquire.AllowedUploadType(ct) {
			t.Errorf("AllowedUploadType(%q) = false, want true", ct)
		}
	}
	for _, ct := range []string{"application/pdf", "text/html", "image/png", ""} {
		if acquire.AllowedUploadType(ct) {
			t.Errorf("AllowedUploadType(%q) = true, want false", ct)
		}
	}
}
