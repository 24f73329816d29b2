package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StorageClient keeps intake uploads (applicant photos and signature
// images) on local disk. Generated application PDFs and XLSX exports
// live in object storage instead.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string // URL prefix the files are served under, e.g. "/files"
	BaseURL      string // optional absolute base (scheme+host) for building URLs
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure upload dir %q: %w", baseDir, err)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: publicPrefix,
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save stores data under a collision-proof name derived from fileName
// and returns that name. The caller's name is reduced to its base so an
// upload can never escape the directory.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(fileName)

	prefix := make([]byte, 8)
	if _, err := rand.Read(prefix); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	final := hex.EncodeToString(prefix) + "_" + fileName

	// write to a temp name first so a crash never leaves a partial
	// file at the served path
	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// GetURL returns the public URL for a saved file, absolute when BaseURL
// is configured and path-relative otherwise.
func (s *StorageClient) GetURL(fileName string) string {
	if s.BaseURL != "" {
		return s.BaseURL + s.PublicPrefix + "/" + fileName
	}
	return s.PublicPrefix + "/" + fileName
}

// CleanupOlderThan removes files whose mtime is older than d. Uploads
// only matter until the generated PDF references them, so the sweep is
// best-effort and errors on individual files are ignored.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	cutoff := time.Now().Add(-d)
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(path)
		}
		return nil
	})
}
