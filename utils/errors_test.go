package utils

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	for name, tc := range map[string]struct {
		err      error
		sentinel error
		message  string
	}{
		"wrapped format": {
			err:      NewNotFoundError("board %s", "b-1"),
			sentinel: ErrNotFound,
			message:  "board b-1: not found",
		},
		"wrapped error": {
			err:      NewUnauthorizedError(errors.New("token expired")),
			sentinel: ErrUnauthorized,
			message:  "token expired: unauthorized",
		},
		"invalid": {
			err:      NewInvalidError("missing id"),
			sentinel: ErrInvalid,
			message:  "missing id: invalid input",
		},
		"forbidden": {
			err:      NewForbiddenError("role viewer"),
			sentinel: ErrForbidden,
			message:  "role viewer: forbidden",
		},
	} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, errors.Cause(tc.err), tc.sentinel)
			require.Equal(t, tc.message, tc.err.Error())
		})
	}
}
