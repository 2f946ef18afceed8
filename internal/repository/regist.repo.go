package repository

import (
	invoiceRepo "order-ledger/internal/repository/invoice"
	ledgerRepo "order-ledger/internal/repository/ledger"
)

// IRepository is a container for all repository interfaces
type IRepository struct {
	Ledger  ledgerRepo.IRepository
	Invoice invoiceRepo.IRepository
}
