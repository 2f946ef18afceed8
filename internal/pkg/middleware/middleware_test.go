package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(CorsMiddleware(), RequestInit(), ResponseInit())
	e.GET("/ok", func(c *gin.Context) {
		send := c.MustGet("send").(func(r *types.Response))
		send(&types.Response{Data: gin.H{"id": c.GetString(RequestIDKey)}})
	})
	e.GET("/missing", func(c *gin.Context) {
		send := c.MustGet("send").(func(r *types.Response))
		send(&types.Response{Error: errs.NotFound("customer %q", "Dave")})
	})
	return e
}

func TestResponseInitWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-Id", "req-1")
	newEngine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))

	var body types.ResponseAPI
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, map[string]any{"id": "req-1"}, body.Data)
}

func TestResponseInitMapsErrorKind(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body types.ResponseAPI
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Dave")
}

func TestCorsPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ok", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
