package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInterval("bad interval %s", "chr1")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(MissingParameter("ancestry")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("no variant")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(DataTransform("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Task(errors.New("x"), "boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Invalid interval: bad", InvalidInterval("bad").Error())
	assert.Equal(t, "Missing required parameter: ancestry", MissingParameter("ancestry").Error())
	assert.Equal(t, "Not found: no gene ENSG1", NotFound("no gene %s", "ENSG1").Error())
	assert.Equal(t, "Failed to transform data: oops", DataTransform("oops").Error())
}

func TestWrappedCauseSurvives(t *testing.T) {
	cause := errors.New("connection refused")
	err := Task(cause, "query failed")
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("outer: %w", err)
	var appErr *Error
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, KindTask, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(wrapped))
}
