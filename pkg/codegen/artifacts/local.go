package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
)

// LocalManager stores archives in a directory as <key>.tar.gz next to a
// <key>.tar.gz.sha256 checksum file
type LocalManager struct {
	dir string
}

// NewLocalManager creates a manager rooted at dir, creating it if needed
func NewLocalManager(dir string) (*LocalManager, error) {
	if dir == "" {
		return nil, errors.New("archive directory cannot be empty")
	}
	if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalManager{dir: dir}, nil
}

// Store packs artifacts and writes the archive and its checksum
func (m *LocalManager) Store(ctx context.Context, key string, artifacts []codegen.Artifact) (*StoreResult, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, hash, err := Pack(artifacts)
	if err != nil {
		return nil, err
	}

	archivePath := m.archivePath(key)
	if err := writeFileAtomic(archivePath, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := writeFileAtomic(archivePath+config.ChecksumExtension, []byte(hash+"\n")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &StoreResult{
		Location:       archivePath,
		Hash:           hash,
		Size:           totalSize(artifacts),
		CompressedSize: int64(len(data)),
	}, nil
}

// Fetch reads the archive, verifies it against its checksum file and unpacks it
func (m *LocalManager) Fetch(ctx context.Context, key string) ([]codegen.Artifact, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archivePath := m.archivePath(key)
	data, err := os.ReadFile(archivePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	want, err := os.ReadFile(archivePath + config.ChecksumExtension)
	if err != nil {
		return nil, fmt.Errorf("%w: missing checksum for %s: %v", ErrChecksumMismatch, key, err)
	}
	if got := Checksum(data); got != strings.TrimSpace(string(want)) {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, key)
	}

	return Unpack(data)
}

// Exists checks if an archive is stored under key
func (m *LocalManager) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(m.archivePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the archive and its checksum
func (m *LocalManager) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	archivePath := m.archivePath(key)
	var errs []error
	for _, p := range []string{archivePath, archivePath + config.ChecksumExtension} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases resources
func (m *LocalManager) Close() error {
	return nil
}

func (m *LocalManager) archivePath(key string) string {
	return filepath.Join(m.dir, key+config.ArchiveExtension)
}

func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, config.DefaultFilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func totalSize(artifacts []codegen.Artifact) int64 {
	var size int64
	for _, a := range artifacts {
		size += a.Size()
	}
	return size
}
