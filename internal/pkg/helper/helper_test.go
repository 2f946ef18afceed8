package helper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-ledger/internal/common/enum"
	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	ok := ParseResponse(&types.Response{Data: "x"})
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "OK", ok.Message)

	missing := ParseResponse(&types.Response{Error: errs.NotFound("customer %q", "Dave")})
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, `not found: customer "Dave"`, missing.Message)

	explicit := ParseResponse(&types.Response{Code: http.StatusCreated, Message: "created"})
	assert.Equal(t, http.StatusCreated, explicit.Code)
	assert.Equal(t, "created", explicit.Message)

	internal := ParseResponse(&types.Response{Error: errors.New("boom")})
	assert.Equal(t, http.StatusInternalServerError, internal.Code)

	api := ToAPIResponse(missing)
	assert.Equal(t, http.StatusNotFound, api.Status)
	assert.Equal(t, missing.Message, api.Error)
}

func TestHTTPClientRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("Client-Id"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		body, _ := io.ReadAll(r.Body)
		var got map[string]string
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "pen", got["name"])

		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(&ClientConfig{RequestTimeout: 5})
	resp, err := client.Request(&HTTPRequestPayload{
		Method: enum.POST,
		URL:    srv.URL,
		Params: map[string]string{"page": "1"},
		Body:   map[string]string{"name": "pen"},
	}, &HTTPRequestConfig{
		Ctx:     context.Background(),
		Headers: http.Header{"Client-Id": []string{"abc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.False(t, resp.IsSuccess())
	assert.JSONEq(t, `{"ok":false}`, string(resp.Body))
}

func TestHTTPClientRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"b":1, "a":2}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(&ClientConfig{}).Request(
		&HTTPRequestPayload{Method: enum.POST, URL: srv.URL, Body: []byte(`{"b":1, "a":2}`)},
		&HTTPRequestConfig{Ctx: context.Background()},
	)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestHTTPClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(&ClientConfig{RequestTimeout: 1}).Request(
		&HTTPRequestPayload{Method: enum.GET, URL: url},
		&HTTPRequestConfig{Ctx: context.Background()},
	)
	assert.Error(t, err)
}

func TestStringToFloat64(t *testing.T) {
	for in, want := range map[string]float64{
		"1000":       1000,
		"Rp 1.250":   1250,
		"Rp.12.500":  12500,
		"2,5":        2.5,
		" 3.000,75 ": 3000.75,
	} {
		got, err := StringToFloat64(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, *got, in)
	}

	_, err := StringToFloat64("abc")
	assert.Error(t, err)
}
