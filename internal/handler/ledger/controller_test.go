package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/intake"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/middleware"
	"order-ledger/internal/pkg/table"
	"order-ledger/internal/repository"
	ledgerRepo "order-ledger/internal/repository/ledger"
	ledgerService "order-ledger/internal/service/ledger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := table.NewMemoryStore()
	require.NoError(t, store.EnsureSheet(context.Background(), "ORDER", ledgerPkg.Header))

	rp := repository.IRepository{Ledger: ledgerRepo.NewRepo(store)}
	svc := ledgerService.NewService(rp, intake.LineParser{}, nil, "ORDER")

	e := gin.New()
	e.Use(middleware.RequestInit(), middleware.ResponseInit())
	NewHandler(svc).NewRoutes(e.Group("/api"))
	return e
}

func do(e *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, types.ResponseAPI) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(rec, req)

	var res types.ResponseAPI
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	return rec, res
}

func TestOrderFlow(t *testing.T) {
	e := newRouter(t)

	rec, _ := do(e, http.MethodPost, "/api/v1/orders",
		`{"customer_name":"Alice","items":[{"name":"pen","quantity":2,"unit_price":1000},{"name":"book","quantity":1,"unit_price":5000}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, res := do(e, http.MethodGet, "/api/v1/ledger/ORDER/blocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, res.Data, 1)

	rec, res = do(e, http.MethodGet, "/api/v1/ledger/ORDER/blocks/Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7000.0, res.Data.(map[string]any)["total"])

	rec, _ = do(e, http.MethodGet, "/api/v1/ledger/ORDER/blocks/Dave", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, res = do(e, http.MethodGet, "/api/v1/ledger/ORDER/duplicates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, res.Data.(map[string]any)["names"])
}

func TestOrderRejectsBadBody(t *testing.T) {
	e := newRouter(t)

	rec, _ := do(e, http.MethodPost, "/api/v1/orders", `{"customer_name":"Alice","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/v1/orders", `{"customer_name":"Alice","items":[{"name":"pen","quantity":-1,"unit_price":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodGet, "/api/v1/ledger/MISSING/blocks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseOrder(t *testing.T) {
	e := newRouter(t)

	rec, res := do(e, http.MethodPost, "/api/v1/orders/parse", `{"text":"pen x2 @1000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000.0, res.Data.(map[string]any)["total"])
}
