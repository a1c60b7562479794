// Package filestore keeps uploaded documents on the local filesystem.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// AcceptedTypes are the content types a document may have.
var AcceptedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// LocalStore writes each upload to a temp file, then renames it to a random reference once complete.
// Content type is sniffed from the bytes; the client's claim is ignored.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if maxBytes <= 0 {
		return nil, errors.New("max upload size must be positive")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

var _ portssvc.FileStore = (*LocalStore)(nil)

func (s *LocalStore) Save(ctx context.Context, content io.Reader, originalName string) (*domain.StoredFile, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if n > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", apperrors.ErrFileTooLarge, s.maxBytes)
	}
	if n == 0 {
		return nil, apperrors.NewValidationFailedError("file is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	mtype, err := mimetype.DetectReader(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), AcceptedTypes...) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMediaType, mtype.String())
	}

	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close upload: %w", err)
	}

	ref := uuid.NewString()
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, ref)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	committed = true

	return &domain.StoredFile{
		Reference:   ref,
		ContentType: mtype.String(),
		Size:        n,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *LocalStore) Open(_ context.Context, reference string) (io.ReadCloser, error) {
	path, err := s.path(reference)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("document not found")
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, reference string) error {
	path, err := s.path(reference)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// path maps a reference to its file. Anything but a UUID is rejected so a reference cannot escape dir.
func (s *LocalStore) path(reference string) (string, error) {
	id, err := uuid.Parse(reference)
	if err != nil {
		return "", apperrors.NewNotFoundError("document not found")
	}
	return filepath.Join(s.dir, id.String()), nil
}
