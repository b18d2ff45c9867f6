package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCode(t *testing.T) {
	err := New(PersistenceFailed, "write failed")

	var e *Error
	require.True(t, goerrors.As(err, &e))
	assert.Equal(t, PersistenceFailed, e.Code())
	assert.Equal(t, "write failed", err.Error())
}

func TestWrapPreservesOriginal(t *testing.T) {
	original := fmt.Errorf("disk full")
	err := Wrap(original, PersistenceFailed, "write failed")

	assert.Equal(t, "write failed: disk full", err.Error())
	assert.Equal(t, original, goerrors.Unwrap(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, PersistenceFailed, "write failed"))
	assert.Nil(t, WithFields(nil, Fields{"k": "v"}))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(fmt.Errorf("root"), SchemaIncompatible, "bad document")

	assert.True(t, goerrors.Is(err, New(SchemaIncompatible, "")))
	assert.False(t, goerrors.Is(err, New(PersistenceFailed, "")))
}

func TestWithFieldsMergesOnOwnType(t *testing.T) {
	err := WithFields(New(InvalidInput, "bad tool"), Fields{"tool": "check_weather"})
	err = WithFields(err, Fields{"step": 2})

	var e *Error
	require.True(t, goerrors.As(err, &e))
	assert.Equal(t, InvalidInput, e.Code())
	fields := e.Fields()
	assert.Equal(t, "check_weather", fields["tool"])
	assert.Equal(t, 2, fields["step"])
	assert.Contains(t, err.Error(), "tool=check_weather")
}

func TestWithFieldsOnForeignError(t *testing.T) {
	err := WithFields(fmt.Errorf("plain"), Fields{"k": "v"})

	var e *Error
	require.True(t, goerrors.As(err, &e))
	assert.Equal(t, Unknown, e.Code())
	assert.Equal(t, "v", e.Fields()["k"])
}
