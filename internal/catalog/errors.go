package catalog

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; every *Error unwraps to its kind
// as well as to the underlying cause.
var (
	// ErrIO means a file could not be opened or its metadata read.
	ErrIO = errors.New("io error")
	// ErrHash means reading a file failed part way through hashing.
	ErrHash = errors.New("hash error")
	// ErrStorage means a catalog read or write failed.
	ErrStorage = errors.New("storage error")
	// ErrUnsupportedMedia means a thumbnail was requested for a file that is
	// neither an image nor a video.
	ErrUnsupportedMedia = errors.New("unsupported media")
	// ErrEncoding means the external encoder failed or produced no output.
	ErrEncoding = errors.New("encoding error")
)

// Error carries the kind of failure together with the operation and path
// that produced it.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IOError wraps err as an ErrIO failure.
func IOError(op, path string, err error) error { return newError(ErrIO, op, path, err) }

// HashError wraps err as an ErrHash failure.
func HashError(path string, err error) error { return newError(ErrHash, "hash", path, err) }

// StorageError wraps err as an ErrStorage failure.
func StorageError(op, path string, err error) error { return newError(ErrStorage, op, path, err) }

// UnsupportedMediaError reports a thumbnail request for a non-media file.
func UnsupportedMediaError(path string) error {
	return newError(ErrUnsupportedMedia, "thumbnail", path, nil)
}

// EncodingError wraps err as an ErrEncoding failure.
func EncodingError(path string, err error) error {
	return newError(ErrEncoding, "thumbnail", path, err)
}

// KindOf returns the error kind carried by err, or nil when err is not a
// catalog error.
func KindOf(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return nil
}

// IsRetryable reports whether running the pass again may succeed without
// operator intervention. Only filesystem access problems qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrIO)
}
