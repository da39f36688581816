package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewDirSink(dir)

	p, err := s.Publish(context.Background(), "cours_final.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if p != filepath.Join(dir, "cours_final.pdf") {
		t.Errorf("unexpected path %q", p)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDirSinkStaysInDir(t *testing.T) {
	dir := t.TempDir()
	s := NewDirSink(dir)

	p, err := s.Publish(context.Background(), "../escape.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("file written outside of %q: %q", dir, p)
	}
}

func TestDirSinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirSink(t.TempDir()).Publish(ctx, "x.pdf", nil)
	if err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
