package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/config"
	"github.com/akeil/coursedoc/pkg/layout"
)

func testSettings(t *testing.T) settings {
	cfg := config.Default()
	cfg.ProjectDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	return settings{cfg}
}

func TestReadProject(t *testing.T) {
	s := testSettings(t)
	p := &coursedoc.Project{
		Title:    "Stored",
		Sections: []coursedoc.Section{coursedoc.NewText("Intro", "text")},
	}
	require.NoError(t, s.storage().WriteProject("stored", p))

	got, err := readProject(s, "stored")
	require.NoError(t, err)
	assert.Equal(t, "Stored", got.Title)

	// by path
	got, err = readProject(s, filepath.Join(s.cfg.ProjectDir, "stored.json"))
	require.NoError(t, err)
	assert.Len(t, got.Sections, 1)
}

func TestExpandSrc(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}

	got := expandSrc([]string{filepath.Join(dir, "*.json"), "some-id"})
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		"some-id",
	}, got)
}

func TestExportOptions(t *testing.T) {
	s := testSettings(t)
	s.cfg.Export.OnError = "abort"
	s.cfg.Export.DecodeTimeout = "3s"
	s.cfg.Export.FooterFormat = "%d / %d"

	opts, err := s.exportOptions()
	require.NoError(t, err)
	assert.Equal(t, layout.Abort, opts.Layout.OnSectionError)
	assert.Equal(t, "3s", opts.Layout.DecodeTimeout.String())
	assert.Equal(t, "%d / %d", opts.Layout.FooterFormat)

	s.cfg.Export.OnError = "ignore"
	_, err = s.exportOptions()
	assert.Error(t, err)
}
