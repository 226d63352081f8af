package errors

import (
	"fmt"
	"net/http"
	"testing"

	"dataportal/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("top rows must be at least 1")
	wrapped := Wrap(base, "count failed")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "count failed: top rows must be at least 1", wrapped.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeMapsDomainSentinels(t *testing.T) {
	assert.Equal(t, CodeNotFound, GetCode(core.NewUnknownColumnError("city")))
	assert.Equal(t, CodeNotFound, GetCode(Wrap(core.NewUnknownColumnError("city"), "group failed")))
	assert.Equal(t, CodeNoTable, GetCode(fmt.Errorf("load: %w", core.ErrNoTable)))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{UnsupportedFile("data.txt"), http.StatusBadRequest},
		{NonNumericColumn("city", "sum"), http.StatusUnprocessableEntity},
		{NotFound("session"), http.StatusNotFound},
		{NoTable(), http.StatusConflict},
		{TooLarge("big"), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "status for %v", tt.err)
	}
}

func TestNonNumericColumnMessage(t *testing.T) {
	err := NonNumericColumn("city", "mean")
	assert.Equal(t, "The selected column 'city' is not numeric. 'mean' operation cannot be applied.", err.Error())
	assert.Equal(t, err.Error(), Message(err))
	assert.Equal(t, "internal error", Message(fmt.Errorf("disk on fire")))
}
