package models

import "time"

// Transaction types
const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
	TransactionTypeOrder      = "ORDER"
	TransactionTypeTrade      = "TRADE"
)

// Transaction is the consolidated history row behind the signal queries:
// deposits, withdrawals and brokerage orders share one table keyed by type.
type Transaction struct {
	ID          uint    `gorm:"primarykey"`
	UserID      uint    `gorm:"index;not null"`
	Type        string  `gorm:"index;not null"`
	Amount      float64 `gorm:"not null"`
	Currency    string  `gorm:"default:'GBP'"`
	Status      string  `gorm:"not null;default:'completed'"`
	Destination string
	CrossBorder bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
