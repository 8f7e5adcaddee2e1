package schema

import (
	"time"

	"gorm.io/datatypes"
)

// BalanceSnapshot represents the balance_snapshots table - the last normalized token list
// discovered for a wallet on a chain
type BalanceSnapshot struct {
	// WalletAddress is the lowercased wallet address
	WalletAddress string `gorm:"column:wallet_address;primaryKey;type:text"`
	// Chain is the CAIP-2 chain identifier (e.g., eip155:1)
	Chain string `gorm:"column:chain;primaryKey;type:text"`
	// Tokens is the JSON encoded token list
	Tokens datatypes.JSON `gorm:"column:tokens;not null;type:jsonb"`
	// Version is the balance cache version the snapshot was written under
	Version int64 `gorm:"column:version;not null"`
	// StoredAt is when the snapshot was written
	StoredAt time.Time `gorm:"column:stored_at;not null;type:timestamptz;index:idx_balance_snapshots_stored_at"`
}

// TableName specifies the table name for the BalanceSnapshot model
func (BalanceSnapshot) TableName() string {
	return "balance_snapshots"
}
