package doku

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// TimestampLayout is UTC with second precision, e.g. 2024-03-09T03:04:05Z.
	TimestampLayout = "2006-01-02T15:04:05Z"
	SignaturePrefix = "HMACSHA256="
)

// SignedHeaders carries the values a request must present to the gateway.
type SignedHeaders struct {
	ClientID  string
	RequestID string
	Timestamp string
	Digest    string
	Signature string
}

func (h SignedHeaders) Header() http.Header {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Client-Id", h.ClientID)
	header.Set("Request-Id", h.RequestID)
	header.Set("Request-Timestamp", h.Timestamp)
	header.Set("Signature", h.Signature)
	return header
}

// Digest is base64(SHA-256(body)) over the exact bytes sent.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SignatureBase joins the signed components in the order the gateway
// verifies them.
func SignatureBase(clientID, requestID, timestamp, endpointPath, digest string) string {
	return strings.Join([]string{
		"Client-Id:" + clientID,
		"Request-Id:" + requestID,
		"Request-Timestamp:" + timestamp,
		"Request-Target:" + endpointPath,
		"Digest:" + digest,
	}, "\n")
}

func Sign(secretKey, signatureBase string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signatureBase))
	return SignaturePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type Signer struct {
	clientID  string
	secretKey string
	newID     func() string
	now       func() time.Time
}

func NewSigner(clientID, secretKey string) *Signer {
	return &Signer{
		clientID:  clientID,
		secretKey: secretKey,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

// SignRequest stamps body with a fresh request id and timestamp.
func (s *Signer) SignRequest(body []byte, endpointPath string) SignedHeaders {
	h := SignedHeaders{
		ClientID:  s.clientID,
		RequestID: s.newID(),
		Timestamp: s.now().UTC().Format(TimestampLayout),
		Digest:    Digest(body),
	}
	h.Signature = Sign(s.secretKey, SignatureBase(h.ClientID, h.RequestID, h.Timestamp, endpointPath, h.Digest))
	return h
}
