package serverApp

import (
	"context"
	"net/http"
	"time"

	database "order-ledger/internal/pkg/db"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/pkg/middleware"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/pkg/redis"

	invoiceHandler "order-ledger/internal/handler/invoice"
	ledgerHandler "order-ledger/internal/handler/ledger"

	"github.com/gin-gonic/gin"
)

// Backends are the backing services reported by /health. Any may be nil.
type Backends struct {
	Db    *database.Database
	Redis redis.IRedis
	Rb    *rabbitmq.ConnectionManager
}

// Setup initializes the HTTP server with middleware and routes
func Setup(engine *gin.Engine, c *Container, backends Backends) {
	InitMiddleware(engine)

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  http.StatusOK,
			"service": backends.status(ctx.Request.Context()),
		})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	e := engine.Group(BasePath())
	InitRoutes(e, c)
}

// BasePath returns the base API path
func BasePath() string {
	return "/api"
}

// InitMiddleware initializes global middleware
func InitMiddleware(e *gin.Engine) {
	e.Use(middleware.CorsMiddleware())
	e.Use(middleware.RequestInit())
	e.Use(middleware.ResponseInit())
}

func InitRoutes(e *gin.RouterGroup, c *Container) {
	// === Orders & ledger ===
	LedgerHandler := ledgerHandler.NewHandler(c.LedgerService)
	LedgerHandler.NewRoutes(e)

	// === Invoices ===
	InvoiceHandler := invoiceHandler.NewHandler(c.InvoiceService)
	InvoiceHandler.NewRoutes(e)
}

func (p Backends) status(ctx context.Context) gin.H {
	out := gin.H{}

	if p.Db != nil {
		out["database"] = gin.H{"status": health(!p.Db.IsCloseConnection())}
	}
	if p.Rb != nil {
		out["rabbitmq"] = gin.H{"status": health(!p.Rb.IsClosed())}
	}
	if pinger, ok := p.Redis.(interface{ Ping(context.Context) error }); ok {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		out["redis"] = gin.H{"status": health(pinger.Ping(ctx) == nil)}
	}
	return out
}

func health(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}
