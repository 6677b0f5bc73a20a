package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDuplicateAssignment("user_team", "u1", "t1"))

	assert.ErrorIs(t, err, DuplicateKind)
	assert.NotErrorIs(t, err, NotFoundKind)
	assert.True(t, HasCode(err, ErrDuplicateAssignment))
	assert.Contains(t, err.Error(), "(u1, t1)")
}

func TestCascadeDelete_WrapsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewCascadeDelete("team", "t1", "team_record", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "team_record", err.Step)
	assert.Contains(t, err.Error(), `step "team_record"`)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFound("team", "t1"), http.StatusNotFound},
		{NewBadRequest("bad", nil), http.StatusBadRequest},
		{NewDuplicateAssignment("x"), http.StatusConflict},
		{NewIntegrity("team", "t1", "mismatch"), http.StatusUnprocessableEntity},
		{NewQuery("teams", "", nil), http.StatusInternalServerError},
		{NewCascadeDelete("team", "t1", "s", nil), http.StatusInternalServerError},
		{Unauthorized(nil), http.StatusUnauthorized},
		{&AppError{Code: ErrRateLimited}, http.StatusTooManyRequests},
		{&AppError{Code: ErrTimeout}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestAs(t *testing.T) {
	_, ok := As(stderrors.New("plain"))
	assert.False(t, ok)

	appErr, ok := As(fmt.Errorf("ctx: %w", NewNotFound("user", "u1")))
	assert.True(t, ok)
	assert.Equal(t, "u1", appErr.ID)
}
