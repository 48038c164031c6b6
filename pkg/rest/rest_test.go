package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	var dst struct {
		HostName string `json:"hostName"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hostName":"alice"}`))
	require.NoError(t, ReadJSON(r, &dst))
	assert.Equal(t, "alice", dst.HostName)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, ReadJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.EqualError(t, ReadJSON(r, &dst), "body must not be empty")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hostName":"a"}{"hostName":"b"}`))
	assert.EqualError(t, ReadJSON(r, &dst), "body must only contain a single JSON value")
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusCreated, Envelope{"roomId": "ABCD1234"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"roomId":"ABCD1234"}`, w.Body.String())
}
