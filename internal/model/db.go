package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:64;uniqueIndex;not null"`
	// referring parent; nil when the user signed up without a referral
	ParentID  *uint           `gorm:"index"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TierPrice is one purchasable pricing of a tier, e.g. "Pro / 3 months / 68.00".
// A tier can carry several active pricings at once.
type TierPrice struct {
	ID        uint            `gorm:"primaryKey"`
	TierID    uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:64;not null"`
	Months    int             `gorm:"not null"` // validity granted per purchase
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID          uint            `gorm:"primaryKey"`
	OrderNo     string          `gorm:"size:32;uniqueIndex;not null"` // date-coded, human-routable
	UserID      uint            `gorm:"index;not null"`
	TierID      uint            `gorm:"index;not null"`
	TierPriceID uint            `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus     `gorm:"size:16;index;not null"`
	PayMethod   string          `gorm:"size:32"`  // provider code, set when paid
	TradeRef    string          `gorm:"size:128"` // provider-side transaction reference
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subscription is the validity window [StartAt, ExpireAt) granting a user one
// tier. At most one active window per (user, tier); renewal pushes ExpireAt
// forward instead of inserting an overlapping row.
type Subscription struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"index:idx_sub_user_tier;not null"`
	TierID        uint      `gorm:"index:idx_sub_user_tier;not null"`
	StartAt       time.Time `gorm:"not null"`
	ExpireAt      time.Time `gorm:"index;not null"`
	LatestOrderNo string    `gorm:"size:32;not null"` // most recent order that created or extended the window
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Commission struct {
	ID            uint             `gorm:"primaryKey"`
	BeneficiaryID uint             `gorm:"index;not null"`
	SourceUserID  uint             `gorm:"not null"` // the buyer whose order generated this credit
	OrderNo       string           `gorm:"size:32;uniqueIndex;not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Rate          decimal.Decimal  `gorm:"type:decimal(5,4);not null"` // rate applied at creation, kept for audit
	Status        CommissionStatus `gorm:"size:16;index;not null"`
	UnlockAt      time.Time        `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Withdrawal struct {
	ID           uint             `gorm:"primaryKey"`
	UserID       uint             `gorm:"index;not null"`
	Amount       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	AccountInfo  datatypes.JSON   `gorm:"not null"` // destination payout account as supplied by the user
	Status       WithdrawalStatus `gorm:"size:16;index;not null"`
	RejectReason string           `gorm:"size:255"`
	RefundAmount *decimal.Decimal `gorm:"type:decimal(12,2)"` // credited back on reject/cancel
	AdminID      *uint            // reviewing admin
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
