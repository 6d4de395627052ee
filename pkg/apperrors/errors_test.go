package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "bad request", err: BadRequest("x"), want: KindBadRequest},
		{name: "not found", err: NotFound("x"), want: KindNotFound},
		{name: "conflict", err: Conflict("x"), want: KindConflict},
		{name: "wrapped not found", err: fmt.Errorf("loading: %w", NotFound("user")), want: KindNotFound},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "User not found", MessageOf(NotFound("User not found")))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("pq: connection refused")))
	assert.Equal(t, "Internal server error", MessageOf(Internal("insert failed", errors.New("disk full"))))
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	sentinel := BadRequest("Completed tasks cannot be assigned")
	wrapped := fmt.Errorf("create user: %w", BadRequest("Completed tasks cannot be assigned"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, BadRequest("something else")))

	cause := errors.New("driver failure")
	internal := Internal("query failed", cause)
	assert.True(t, errors.Is(internal, cause))
	assert.Contains(t, internal.Error(), "driver failure")
}
