package ssfs

import "fmt"

// ErrorCode is a stable, negative sentinel identifying one kind of failure the
// core can report. Values are never reused across kinds.
type ErrorCode int

const (
	// ErrDiskAlreadyMounted: Mount attempted on a Volume that is already
	// mounted. Format takes a bare device and does not check mount state;
	// the ssfs CLI reports this code for format or mount while it has a
	// volume mounted.
	ErrDiskAlreadyMounted ErrorCode = -(iota + 1)
	// ErrDiskNotMounted: a file operation or Unmount attempted while no
	// volume is mounted.
	ErrDiskNotMounted
	// ErrCorruptImage: the superblock magic (or, by this implementation's
	// choice, block size) didn't match on mount.
	ErrCorruptImage
	// ErrInvalidInode: an inode number is out of range, or refers to a free
	// slot where a valid one was required.
	ErrInvalidInode
	// ErrInvalidOffset: a negative offset, or one beyond the addressable
	// range of a file.
	ErrInvalidOffset
	// ErrOutOfSpace: no free data block, or too few blocks to format.
	ErrOutOfSpace
	// ErrOutOfInodes: no free inode slot remains.
	ErrOutOfInodes
	// ErrBackend: the storage backend reported a failure.
	ErrBackend
)

var codeNames = map[ErrorCode]string{
	ErrDiskAlreadyMounted: "disk already mounted",
	ErrDiskNotMounted:     "disk not mounted",
	ErrCorruptImage:       "corrupt image",
	ErrInvalidInode:       "invalid inode",
	ErrInvalidOffset:      "invalid offset",
	ErrOutOfSpace:         "out of space",
	ErrOutOfInodes:        "out of inodes",
	ErrBackend:            "backend error",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error is the error type returned by every exported SSFS operation. It
// always carries one of the ErrorCode sentinels above, plus an optional
// human-readable message and wrapped cause.
type Error struct {
	Code    ErrorCode
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.message)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is compare against a bare sentinel created with NewError,
// so callers can write errors.Is(err, ssfs.NewError(ssfs.ErrOutOfSpace)).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// NewError creates an *Error carrying just a code, with the code's default
// message.
func NewError(code ErrorCode) *Error {
	return &Error{Code: code}
}

// NewErrorWithMessage creates an *Error carrying a code and a custom message.
func NewErrorWithMessage(code ErrorCode, message string) *Error {
	return &Error{Code: code, message: message}
}

// WithMessage returns a copy of the error with an additional message appended.
func (e *Error) WithMessage(message string) *Error {
	if e.message == "" {
		return &Error{Code: e.Code, message: message, cause: e.cause}
	}
	return &Error{
		Code:    e.Code,
		message: fmt.Sprintf("%s: %s", e.message, message),
		cause:   e.cause,
	}
}

// Wrap returns a copy of the error with `cause` attached so errors.Unwrap and
// errors.As can reach it.
func (e *Error) Wrap(cause error) *Error {
	message := e.message
	if cause != nil {
		if message == "" {
			message = cause.Error()
		} else {
			message = fmt.Sprintf("%s: %s", message, cause.Error())
		}
	}
	return &Error{Code: e.Code, message: message, cause: cause}
}

// wrapBackendError lifts any error returned by a BlockDevice into an
// ErrBackend-coded *Error, passing it through unchanged if it's already one
// of ours.
func wrapBackendError(err error) *Error {
	if err == nil {
		return nil
	}
	if ssfsErr, ok := err.(*Error); ok {
		return ssfsErr
	}
	return NewError(ErrBackend).Wrap(err)
}
