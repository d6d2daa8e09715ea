package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default
	require.NoError(t, c.Validate())
	assert.Equal(t, 400*time.Millisecond, c.AutosaveDelay.Std())
}

func TestNewFromReaderYAML(t *testing.T) {
	c, err := NewFromReader(strings.NewReader(`
directory: /tmp/notes
backend: sqlite
database: /tmp/notes.db
autosaveDelay: 1s
notifications: false
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes", c.Directory)
	assert.Equal(t, db.TypeSQLite, c.Backend)
	assert.Equal(t, time.Second, c.AutosaveDelay.Std())
	assert.False(t, c.Notifications)
	assert.True(t, c.Sidebar, "unset keys keep their defaults")

	path, err := c.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.db", path)
}

func TestNewFromTOMLReader(t *testing.T) {
	c, err := NewFromTOMLReader(strings.NewReader(`
directory = "/tmp/toml-notes"
autosaveDelay = "250ms"
remote = "localhost:7777"
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/toml-notes", c.Directory)
	assert.Equal(t, 250*time.Millisecond, c.AutosaveDelay.Std())
	assert.Equal(t, "localhost:7777", c.Remote)
	assert.Equal(t, db.TypeFS, c.Backend)
}

func TestValidation(t *testing.T) {
	testcases := map[string]string{
		"unknown backend": "backend: postgres",
		"empty directory": `directory: ""`,
		"bad duration":    "autosaveDelay: soon",
		"bad log level":   "logLevel: chatty",
	}
	for name, doc := range testcases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFromReader(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default, *c)

	tomlPath := filepath.Join(dir, "stickies.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`backend = "memory"`), 0600))
	c, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, db.TypeMemory, c.Backend)

	yamlPath := filepath.Join(dir, "stickies.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("sidebar: false\n"), 0600))
	c, err = Load(yamlPath)
	require.NoError(t, err)
	assert.False(t, c.Sidebar)
}
