package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestOllama_Complete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "fixed"})
	}))
	defer srv.Close()

	o := NewOllama(srv.Client(), srv.URL+"/", "")
	resp, err := o.Complete(context.Background(), "fix it")
	require.NoError(t, err)

	assert.Equal(t, "fixed", resp)
	assert.Equal(t, domain.DefaultOllamaModel, got.Model)
	assert.Equal(t, "fix it", got.Prompt)
	assert.False(t, got.Stream)
}

func TestOllama_Complete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllama(srv.Client(), srv.URL, "nope").Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model 'nope' not found")
}

func TestOllama_Complete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllama(nil, url, "").Complete(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestOllama_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.True(t, NewOllama(srv.Client(), srv.URL, "").Available(context.Background()))

	srv.Close()
	assert.False(t, NewOllama(srv.Client(), srv.URL, "").Available(context.Background()))
}
