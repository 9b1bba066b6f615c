package repositories

import (
	"gorm.io/gorm"
)

// GORMTxRunner runs functions inside a single database transaction, handing
// them order and product repositories bound to that transaction.
type GORMTxRunner struct {
	db *gorm.DB
}

// NewGORMTxRunner creates a new instance of GORMTxRunner.
func NewGORMTxRunner(db *gorm.DB) *GORMTxRunner {
	return &GORMTxRunner{
		db: db,
	}
}

// InTransaction opens a transaction, binds the repositories to it and runs
// fn. Any error from fn rolls the whole transaction back.
func (r *GORMTxRunner) InTransaction(fn func(repos TxRepos) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(TxRepos{
			Orders:   NewGORMOrderRepository(tx),
			Products: NewGORMProductRepository(tx),
		})
	})
}
