package serverApp

import (
	"fmt"
	"time"

	config "order-ledger/configs"
	"order-ledger/internal/common/enum"
	"order-ledger/internal/pkg/doku"
	"order-ledger/internal/pkg/exporter"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/intake"
	"order-ledger/internal/pkg/invoiceid"
	"order-ledger/internal/pkg/kvstore"
	"order-ledger/internal/pkg/metrics"
	midtransPkg "order-ledger/internal/pkg/midtrans"
	"order-ledger/internal/pkg/notify"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/repository"
	invoiceRepo "order-ledger/internal/repository/invoice"
	ledgerRepo "order-ledger/internal/repository/ledger"
	invoiceService "order-ledger/internal/service/invoice"
	ledgerService "order-ledger/internal/service/ledger"
)

// Container holds the services shared by the API and the workers.
type Container struct {
	Env            *config.Config
	Metrics        *metrics.Metrics
	Repository     repository.IRepository
	LedgerService  ledgerService.IService
	InvoiceService invoiceService.IService
}

// NewContainer wires repositories and services. Storage and publisher may
// be nil interfaces; their steps are then skipped.
func NewContainer(payload *config.SetupServerDto, m *metrics.Metrics, publisher rabbitmq.IPublisher) (*Container, error) {
	env := payload.Env

	loc, err := time.LoadLocation(env.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", env.AppTimezone, err)
	}

	kv, err := setupKV(payload)
	if err != nil {
		return nil, err
	}

	httpClient := helper.NewHTTPClient(&helper.ClientConfig{
		ProxyURL:       env.HTTPProxyURL,
		RequestTimeout: env.HTTPTimeoutSeconds,
	})

	rp := repository.IRepository{
		Ledger:  ledgerRepo.NewRepo(payload.Tables),
		Invoice: invoiceRepo.NewRepo(payload.Tables),
	}

	ledgerSvc := ledgerService.NewService(rp, intake.NewParser(payload.Ai), m, env.LedgerSheet)

	deps := invoiceService.Deps{
		Items:     ledgerSvc,
		IDs:       invoiceid.New(kv, invoiceid.Config{Location: loc, Mode: env.CounterMode}),
		Payments:  setupPaymentProvider(env, httpClient),
		Exporter:  exporter.NewPDF(loc, ""),
		Storage:   payload.S3,
		Notifier:  notify.NewDispatcher(env.WebhookURL, httpClient),
		Publisher: publisher,
		Metrics:   m,
	}

	invoiceSvc := invoiceService.NewService(rp, deps, invoiceService.Config{
		InvoiceSheet:      env.InvoiceSheet,
		ProviderName:      string(env.PaymentProvider),
		PaymentDueMinutes: env.PaymentDueMinutes,
		Location:          loc,
	})

	return &Container{
		Env:            env,
		Metrics:        m,
		Repository:     rp,
		LedgerService:  ledgerSvc,
		InvoiceService: invoiceSvc,
	}, nil
}

func setupKV(payload *config.SetupServerDto) (kvstore.Store, error) {
	switch payload.Env.KVDriver {
	case enum.KVMemory:
		return kvstore.NewMemory(), nil
	case enum.KVRedis:
		if payload.Rds == nil {
			return nil, fmt.Errorf("KV_DRIVER is redis but no redis client is available")
		}
		return kvstore.NewRedis(payload.Rds), nil
	default:
		return nil, fmt.Errorf("unsupported KV_DRIVER %q", payload.Env.KVDriver)
	}
}

func setupPaymentProvider(env *config.Config, httpClient *helper.HTTPClient) invoiceService.PaymentLinkProvider {
	if env.PaymentProvider == enum.MIDTRANS {
		return midtransPkg.Setup(&midtransPkg.Config{
			ServerKey:   env.MidtransServerKey,
			Environment: env.PaymentEnvironment,
		})
	}
	return doku.Setup(&doku.Config{
		ClientID:    env.DokuClientID,
		SecretKey:   env.DokuSecretKey,
		Environment: env.PaymentEnvironment,
	}, httpClient)
}
