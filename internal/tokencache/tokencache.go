// Package tokencache persists the archive resume token between runs so an
// interrupted stream can be picked up again. Persistence is best-effort;
// a run that already holds a token never depends on it.
package tokencache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const fileName = "resume_token.json"

type payload struct {
	ResumeToken string `json:"resume_token"`
}

// DefaultDir returns the platform cache directory for this tool.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, "ztf-alert-lab"), nil
}

// Save writes the resume token to dir, creating it if needed.
func Save(dir, token string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(payload{ResumeToken: token})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

// Load reads a previously saved resume token from dir.
func Load(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		return "", fmt.Errorf("read token cache: %w", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("decode token cache: %w", err)
	}
	return p.ResumeToken, nil
}
