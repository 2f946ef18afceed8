package s3aws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the path-style requests the client makes.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	heads   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		}
		return
	}

	key := bucket + "/" + parts[1]
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
	case http.MethodHead:
		f.heads++
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T) (*S3Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewS3Client(context.Background(), S3Config{
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "key",
		AWSSecretAccessKey: "secret",
		Endpoint:           srv.URL,
		BucketName:         "invoices",
		PresignTTL:         time.Hour,
		WaitAttempts:       3,
		WaitDelay:          10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return client, fake
}

func TestNewS3ClientCreatesBucket(t *testing.T) {
	_, fake := newTestClient(t)
	assert.True(t, fake.buckets["invoices"])
}

func TestUploadAndWait(t *testing.T) {
	ctx := context.Background()
	client, fake := newTestClient(t)

	require.NoError(t, client.UploadFile(ctx, "invoices/INV-1.pdf", []byte("%PDF-1.3"), "application/pdf"))
	assert.Equal(t, []byte("%PDF-1.3"), fake.objects["invoices/invoices/INV-1.pdf"])

	require.NoError(t, client.WaitUntilExists(ctx, "invoices/INV-1.pdf"))
}

func TestWaitGivesUpAfterAttempts(t *testing.T) {
	client, fake := newTestClient(t)

	err := client.WaitUntilExists(context.Background(), "missing.pdf")
	assert.Error(t, err)
	assert.Equal(t, 3, fake.heads)
}

func TestPresignedURL(t *testing.T) {
	client, _ := newTestClient(t)

	raw, err := client.GetPresignedURL(context.Background(), "invoices/INV-1.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/invoices/invoices/INV-1.pdf", u.Path)
	assert.Equal(t, "application/pdf", u.Query().Get("response-content-type"))
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}
