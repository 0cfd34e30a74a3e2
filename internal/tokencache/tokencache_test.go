package tokencache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	require.NoError(t, Save(dir, "tok-123"))

	token, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	// File content is the documented JSON object.
	data, err := os.ReadFile(filepath.Join(dir, "resume_token.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"resume_token": "tok-123"}`, string(data))
}

func TestSave_LastWriterWins(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Save(dir, "tok-old"))
	require.NoError(t, Save(dir, "tok-new"))

	token, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestSave_UnusableDir(t *testing.T) {
	err := Save(string([]byte{0}), "tok")
	assert.Error(t, err)
}
