package ssfs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinyfs/ssfs"
)

func TestErrorWithMessage(t *testing.T) {
	err := ssfs.NewError(ssfs.ErrOutOfSpace).WithMessage("no free blocks left")
	assert.Equal(t, "out of space: no free blocks left", err.Error())
	assert.ErrorIs(t, err, ssfs.NewError(ssfs.ErrOutOfSpace))
}

func TestErrorWrap(t *testing.T) {
	cause := errors.New("disk i/o failure")
	err := ssfs.NewError(ssfs.ErrBackend).Wrap(cause)

	assert.Equal(t, "backend error: disk i/o failure", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ssfs.NewError(ssfs.ErrBackend))
}

func TestErrorIsDistinguishesCodes(t *testing.T) {
	a := ssfs.NewError(ssfs.ErrOutOfSpace)
	b := ssfs.NewError(ssfs.ErrOutOfInodes)
	assert.False(t, a.Is(b))
}
