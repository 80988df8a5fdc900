// Package dataset manages uploaded datasets: filesystem session
// storage with TTL expiry, and DuckDB-based CSV profiling.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
)

const metadataFile = "metadata.json"

// sessionMetadata records session lifetime for TTL cleanup.
type sessionMetadata struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Storage is a filesystem session store. Each dataset lives in its own
// directory under the base dir, keyed by dataset id, with a
// metadata.json recording expiry.
type Storage struct {
	baseDir string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewStorage creates a session store rooted at baseDir, creating it if
// needed.
func NewStorage(baseDir string, ttl time.Duration, logger *zap.Logger) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", baseDir, err)
	}
	return &Storage{
		baseDir: baseDir,
		ttl:     ttl,
		logger:  logger.Named("storage"),
		now:     time.Now,
	}, nil
}

// NewID generates a dataset id. Short enough for URLs, random enough
// to not collide within a session store's lifetime.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *Storage) sessionDir(datasetID string) string {
	return filepath.Join(s.baseDir, datasetID)
}

// CreateSession creates the session directory and writes its expiry
// metadata.
func (s *Storage) CreateSession(datasetID string) error {
	dir := s.sessionDir(datasetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	meta := sessionMetadata{
		CreatedAt: s.now().UTC(),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}
	return nil
}

// SaveFile writes a file into the session directory, creating the
// session if it does not exist yet.
func (s *Storage) SaveFile(datasetID, filename string, content []byte) (string, error) {
	dir := s.sessionDir(datasetID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := s.CreateSession(datasetID); err != nil {
			return "", err
		}
	}
	// filepath.Base guards against path traversal in uploaded names.
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return path, nil
}

// FilePath returns the path of a stored file, or ErrDatasetNotFound if
// the session or file is missing or expired.
func (s *Storage) FilePath(datasetID, filename string) (string, error) {
	if expired, err := s.isExpired(datasetID); err != nil {
		return "", err
	} else if expired {
		return "", apperrors.ErrSessionExpired
	}
	path := filepath.Join(s.sessionDir(datasetID), filepath.Base(filename))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", apperrors.ErrDatasetNotFound
	}
	return path, nil
}

// SaveJSON stores a named JSON document in the session directory.
func (s *Storage) SaveJSON(datasetID, name string, v any) error {
	dir := s.sessionDir(datasetID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := s.CreateSession(datasetID); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// ReadJSON loads a named JSON document from the session directory into
// v. Returns ErrDatasetNotFound when the document is missing.
func (s *Storage) ReadJSON(datasetID, name string, v any) error {
	if expired, err := s.isExpired(datasetID); err != nil {
		return err
	} else if expired {
		return apperrors.ErrSessionExpired
	}
	path := filepath.Join(s.sessionDir(datasetID), name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrDatasetNotFound
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// DeleteSession removes a session and everything in it. Returns false
// if the session did not exist.
func (s *Storage) DeleteSession(datasetID string) (bool, error) {
	dir := s.sessionDir(datasetID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("deleting session %s: %w", datasetID, err)
	}
	return true, nil
}

// CleanupExpired removes sessions past their expiry, including those
// with unreadable metadata. Returns the number removed. Run at
// startup.
func (s *Storage) CleanupExpired() (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("listing storage dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		expired, err := s.isExpired(entry.Name())
		if err != nil || expired {
			if rmErr := os.RemoveAll(filepath.Join(s.baseDir, entry.Name())); rmErr != nil {
				s.logger.Warn("failed to remove expired session",
					zap.String("dataset_id", entry.Name()),
					zap.Error(rmErr))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("removed expired sessions", zap.Int("count", removed))
	}
	return removed, nil
}

// isExpired reports whether a session is past its expiry. Corrupt or
// missing metadata counts as an error so the caller can treat the
// session as unusable.
func (s *Storage) isExpired(datasetID string) (bool, error) {
	path := filepath.Join(s.sessionDir(datasetID), metadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, apperrors.ErrDatasetNotFound
		}
		return false, fmt.Errorf("reading session metadata: %w", err)
	}
	var meta sessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return false, fmt.Errorf("decoding session metadata: %w", err)
	}
	return s.now().UTC().After(meta.ExpiresAt), nil
}
