package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsComparesCodes(t *testing.T) {
	err := Clone(ErrPreconditionFailed, "participant in conflict")
	assert.True(t, Is(err, ErrPreconditionFailed))
	assert.True(t, Is(fmt.Errorf("toggle: %w", err), ErrPreconditionFailed))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(sql.ErrNoRows, ErrNotFound))
	assert.False(t, Is(nil, ErrNotFound))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)

	capacity := FromError(Clone(ErrCapacityExceeded, "cycle full"))
	assert.Equal(t, http.StatusConflict, capacity.Status)
	assert.Equal(t, "cycle full", capacity.Message)
}
