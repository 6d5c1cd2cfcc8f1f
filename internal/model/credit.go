package model

import (
	"time"

	"github.com/google/uuid"
)

// UserCredit is a user's generation balance.
// Paid credits are stored in cents.
type UserCredit struct {
	ID                       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID                   uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	FreeGenerationsRemaining int       `json:"free_generations_remaining" gorm:"not null"`
	PaidCreditsCents         int64     `json:"paid_credits_cents" gorm:"not null"`
	TotalGenerations         int       `json:"total_generations" gorm:"not null"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (UserCredit) TableName() string {
	return "user_credits"
}

// CreditTopUpSource tells where manually added credits came from.
type CreditTopUpSource string

const (
	CreditTopUpAdmin    CreditTopUpSource = "admin"
	CreditTopUpPurchase CreditTopUpSource = "purchase"
)

// IsValid checks if the source is valid.
func (s CreditTopUpSource) IsValid() bool {
	switch s {
	case CreditTopUpAdmin, CreditTopUpPurchase:
		return true
	}
	return false
}

// CreditBalanceResponse represents a balance in API responses.
type CreditBalanceResponse struct {
	FreeGenerationsRemaining int     `json:"remainingFreeGenerations"`
	PaidCredits              float64 `json:"remainingCredits"`
	TotalGenerations         int     `json:"totalGenerations"`
	UnitCost                 float64 `json:"unitCost"`
}

// CentsToCurrency converts an amount in cents to currency units.
func CentsToCurrency(cents int64) float64 {
	return float64(cents) / 100
}

// FundingKind tells which balance pays for a generation.
type FundingKind string

const (
	FundingFree   FundingKind = "free"
	FundingPaid   FundingKind = "paid"
	FundingDenied FundingKind = "denied"
)

// String returns the string representation of the funding kind.
func (k FundingKind) String() string {
	return string(k)
}

// Funding is a funding decision. CostCents is zero unless Kind is FundingPaid.
type Funding struct {
	Kind      FundingKind
	CostCents int64
}

// IsFree reports whether the free quota pays.
func (f Funding) IsFree() bool {
	return f.Kind == FundingFree
}

// Allowed reports whether the generation may proceed.
func (f Funding) Allowed() bool {
	return f.Kind == FundingFree || f.Kind == FundingPaid
}
