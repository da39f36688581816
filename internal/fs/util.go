package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/akeil/coursedoc/internal/logging"
)

// Move moves a file from src to dst.
// It tries os.Rename() first and falls back on "copy and delete".
//
// If src cannot be delted after a successful copy,
// NO error is returned and src remains as it was.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Rename may have failed when moving across file systems
	// so try again w/ copy & delete.
	logging.Debug("Rename failed for %v -> %v, fall back on copy and delete", src, dst)
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	if err != nil {
		w.Close()
		os.Remove(dst)
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}

	// A bit untidy, but we carry on even if we fail to clean up behind us.
	ignoredErr := os.Remove(src)
	if ignoredErr != nil {
		logging.Error("Failed to remove file %v", src)
	}

	return nil
}

// WriteFile writes data to a temporary file next to path and moves it into
// place once it is complete. Readers never see a partially written file.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, perm)
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}

	err = Move(tmpName, path)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
