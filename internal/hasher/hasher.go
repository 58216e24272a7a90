// Package hasher computes the content identity of media files.
//
// The identity is the lower-case hex BLAKE2b-256 digest of the full file
// content. A read error part way through fails the hash instead of returning
// the digest of a truncated byte range.
package hasher

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/blake2b"

	"media-catalog/internal/catalog"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/metrics"
)

// DefaultBufferSize is the read chunk size.
const DefaultBufferSize = 64 * 1024

// Hasher hashes files read through the filesystem retry helpers.
type Hasher struct {
	retry   filesystem.RetryConfig
	bufSize int
}

// New returns a Hasher with the default retry policy and buffer size.
func New() *Hasher {
	return &Hasher{retry: filesystem.DefaultRetryConfig(), bufSize: DefaultBufferSize}
}

// WithBufferSize returns a copy of h reading in chunks of n bytes.
func (h *Hasher) WithBufferSize(n int) *Hasher {
	c := *h
	if n > 0 {
		c.bufSize = n
	}
	return &c
}

// Hash returns the content hash of the file at path. Open failures are
// reported as catalog.ErrIO, read failures as catalog.ErrHash.
func (h *Hasher) Hash(path string) (catalog.ContentHash, error) {
	start := time.Now()

	f, err := filesystem.OpenWithRetry(path, h.retry)
	if err != nil {
		return "", catalog.IOError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	sum, n, err := digest(f, h.bufSize)
	if err != nil {
		metrics.HashErrorsTotal.Inc()
		return "", catalog.HashError(path, err)
	}

	metrics.HashBytesTotal.Add(float64(n))
	metrics.HashDuration.Observe(time.Since(start).Seconds())
	return sum, nil
}

// Hash hashes path with a default Hasher.
func Hash(path string) (catalog.ContentHash, error) {
	return New().Hash(path)
}

// Reader hashes everything r yields. It is the streaming core of Hash and is
// exposed for callers that already hold the bytes.
func Reader(r io.Reader) (catalog.ContentHash, error) {
	sum, _, err := digest(r, DefaultBufferSize)
	return sum, err
}

func digest(r io.Reader, bufSize int) (catalog.ContentHash, int64, error) {
	acc, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, fmt.Errorf("init blake2b: %w", err)
	}

	buf := make([]byte, bufSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", total, fmt.Errorf("read after %d bytes: %w", total, err)
		}
	}

	return catalog.ContentHash(hex.EncodeToString(acc.Sum(nil))), total, nil
}
