package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"swecron/internal/posting"
	"swecron/logger"
	apperrors "swecron/pkg/errors"
)

// FileStore keeps the listing history as a JSON array on disk
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is an empty history; anything
// that does not decode as a list of postings is a store error.
func (s *FileStore) Load(ctx context.Context) ([]posting.Posting, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.ForStore().Debug().Str("path", s.path).Msg("No listing snapshot yet, starting empty")
			return []posting.Posting{}, nil
		}
		return nil, apperrors.NewStore(fmt.Sprintf("failed to read %s", s.path), err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperrors.NewStore(fmt.Sprintf("%s does not contain a list of postings", s.path), nil)
	}

	var postings []posting.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, apperrors.NewStore(fmt.Sprintf("failed to parse %s", s.path), err)
	}

	logger.ForStore().Debug().Str("path", s.path).Int("count", len(postings)).Msg("Loaded listing snapshot")
	return postings, nil
}

// Save rewrites the snapshot through a temporary file and a rename so an
// interrupted write leaves the previous snapshot intact.
func (s *FileStore) Save(ctx context.Context, postings []posting.Posting) error {
	data, err := Encode(postings)
	if err != nil {
		return apperrors.NewStore("failed to encode listings", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewStore(fmt.Sprintf("failed to create temp file in %s", dir), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewStore("failed to write listings", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewStore("failed to sync listings", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStore("failed to close listings", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return apperrors.NewStore("failed to set listings permissions", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.NewStore(fmt.Sprintf("failed to replace %s", s.path), err)
	}

	logger.ForStore().Info().Str("path", s.path).Int("count", len(postings)).Msg("Saved listing snapshot")
	return nil
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}

// Encode renders postings as a two-space indented JSON array without HTML
// escaping or a trailing newline, the format the snapshot is kept in.
func Encode(postings []posting.Posting) ([]byte, error) {
	if postings == nil {
		postings = []posting.Posting{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(postings); err != nil {
		return nil, err
	}
	return rawLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// rawLineSeparators undoes the encoder's \u2028 and \u2029 escapes so those
// characters are stored as written by other tools.
func rawLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i])
		if i+1 < len(data) {
			i++
			out = append(out, data[i])
		}
	}
	return out
}
