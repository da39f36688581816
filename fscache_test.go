package coursedoc

import (
	"bytes"
	"io"
	"testing"
)

func TestFilesystemCache(t *testing.T) {
	c := NewFilesystemCache(t.TempDir() + "/cache")

	_, err := c.Get("img")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound for empty cache, got %v", err)
	}

	err = c.Put("img", bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatal(err)
	}

	r, err := c.Get("img")
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected cache content %q", data)
	}

	err = c.Delete("img")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Get("img")
	if !IsNotFound(err) {
		t.Errorf("entry was not deleted")
	}

	// deleting a missing entry is not an error
	if err = c.Delete("img"); err != nil {
		t.Error(err)
	}
}
