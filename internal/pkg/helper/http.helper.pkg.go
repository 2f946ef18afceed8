package helper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"order-ledger/internal/common/enum"
)

type HTTPRequestPayload struct {
	Method enum.HTTPMethodEnum
	URL    string
	Params map[string]string
	// Body is sent as-is when it is a []byte, otherwise JSON encoded.
	Body any
}

type BasicAuth struct {
	Username string
	Password string
}

type HTTPRequestConfig struct {
	Ctx     context.Context
	Headers http.Header
	Auth    *BasicAuth
}

type HTTPAPIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *HTTPAPIResponse) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

func handleRequestBody(payload *HTTPRequestPayload, config *HTTPRequestConfig) (io.Reader, error) {
	if payload.Body == nil {
		return nil, nil
	}

	var raw []byte
	switch body := payload.Body.(type) {
	case []byte:
		raw = body
	case string:
		raw = []byte(body)
	default:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		raw = b
	}

	if config.Headers == nil {
		config.Headers = http.Header{}
	}
	if config.Headers.Get("Content-Type") == "" {
		config.Headers.Set("Content-Type", "application/json")
	}
	return bytes.NewReader(raw), nil
}

func parseResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
