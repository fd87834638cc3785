package artifacts

import "errors"

// Lookup failures.
var (
	ErrArchiveNotFound  = errors.New("archive not found")
	ErrInvalidKey       = errors.New("invalid archive key")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Transfer and encoding failures. Managers wrap the underlying cause.
var (
	ErrUploadFailed        = errors.New("upload failed")
	ErrDownloadFailed      = errors.New("download failed")
	ErrCompressionFailed   = errors.New("compression failed")
	ErrDecompressionFailed = errors.New("decompression failed")
)

// IsArchiveNotFound reports whether nothing is stored under the fingerprint
func IsArchiveNotFound(err error) bool {
	return errors.Is(err, ErrArchiveNotFound)
}
