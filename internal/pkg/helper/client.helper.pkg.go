package helper

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"order-ledger/internal/pkg/logger"
)

type ClientConfig struct {
	ProxyURL       string
	SkipTLSVerify  bool
	RequestTimeout int
}

// HTTPClient performs outbound calls to gateways and webhooks.
type HTTPClient struct {
	Client *http.Client
	Config *ClientConfig
}

func NewHTTPClient(cfg *ClientConfig) *HTTPClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.SkipTLSVerify,
		},
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			logger.Error.Printf("Invalid proxy URL: %v", err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.Debug.Printf("Using proxy: %s", cfg.ProxyURL)
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30
	}

	return &HTTPClient{
		Client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(timeout) * time.Second,
		},
		Config: cfg,
	}
}

// Request sends payload and returns the raw response. Non-2xx statuses are
// not errors; only transport failures are.
func (h *HTTPClient) Request(payload *HTTPRequestPayload, config *HTTPRequestConfig) (*HTTPAPIResponse, error) {
	requestBody, err := handleRequestBody(payload, config)
	if err != nil {
		logger.Debug.Println("Error handling request body:", err.Error())
		return nil, err
	}

	req, err := h.prepareRequest(payload, requestBody, config)
	if err != nil {
		logger.Debug.Println("Error preparing request:", err.Error())
		return nil, err
	}

	return h.execute(req)
}

func (h *HTTPClient) prepareRequest(payload *HTTPRequestPayload, body io.Reader, config *HTTPRequestConfig) (*http.Request, error) {
	req, err := http.NewRequestWithContext(config.Ctx, payload.Method.ToString(), payload.URL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range config.Headers {
		req.Header[key] = append(req.Header[key], values...)
	}

	if config.Auth != nil {
		req.SetBasicAuth(config.Auth.Username, config.Auth.Password)
	}

	if len(payload.Params) > 0 {
		q := req.URL.Query()
		for key, value := range payload.Params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req, nil
}

func (h *HTTPClient) execute(req *http.Request) (*HTTPAPIResponse, error) {
	logger.Debug.Printf("Making request to: %s", req.URL.String())

	resp, err := h.Client.Do(req)
	if err != nil {
		logger.Error.Printf("Request to %s failed: %v", req.URL.Host, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := parseResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	logger.Debug.Printf("Request completed with status: %d", resp.StatusCode)

	return &HTTPAPIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
