package repository

import "gorm.io/gorm"

// TxRunner wraps gorm's transaction scope so services can depend on a small
// interface instead of the full *gorm.DB.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn inside one atomic commit; fn's error rolls everything back.
func (t *TxRunner) InTx(fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}
