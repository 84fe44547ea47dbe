package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Quantities are numbers in the persisted document, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// InventoryType enum constants
const (
	InventoryTypeDiagnostic = "diagnostic"
	InventoryTypeTools      = "tools"
)

// TransactionType enum constants
const (
	TxTypeAddition   = "addition"
	TxTypeWithdrawal = "withdrawal"
)

// Unit codes used by the inventory screens.
const (
	UnitPiece  = "piece"
	UnitBox    = "box"
	UnitKit    = "kit"
	UnitML     = "ml"
	UnitLiter  = "liter"
	UnitGram   = "gram"
	UnitBottle = "bottle"
	UnitTest   = "test"
)

// Section codes (laboratory departments owning stock).
const (
	SectionBacteriology = "bacteriology"
	SectionVirology     = "virology"
	SectionParasitology = "parasitology"
	SectionSerology     = "serology"
	SectionPCR          = "pcr"
	SectionPathology    = "pathology"
	SectionGeneral      = "general"
)

// ValidInventoryType reports whether t is a known inventory type.
func ValidInventoryType(t string) bool {
	return t == InventoryTypeDiagnostic || t == InventoryTypeTools
}

// InventoryItem is a stock line. Quantity only goes down through withdrawal transactions.
type InventoryItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Type        string           `json:"type"`
	Unit        string           `json:"unit"`
	Section     string           `json:"section"`
	ExpiryDate  string           `json:"expiry_date,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	MinQuantity *decimal.Decimal `json:"min_quantity,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// InventoryTransaction records a stock change. Immutable once written.
type InventoryTransaction struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Type            string          `json:"type"` // addition, withdrawal
	SpecialistName  string          `json:"specialist_name,omitempty"`
	TransactionDate string          `json:"transaction_date"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type InventoryItemInput struct {
	Name        string           `json:"name" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Type        string           `json:"type" binding:"required"`
	Unit        string           `json:"unit"`
	Section     string           `json:"section"`
	ExpiryDate  string           `json:"expiry_date"`
	BatchNumber string           `json:"batch_number"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

// InventoryItemPatch deliberately has no quantity: stock moves via transactions.
type InventoryItemPatch struct {
	Name        *string          `json:"name,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	Section     *string          `json:"section,omitempty"`
	ExpiryDate  *string          `json:"expiry_date,omitempty"`
	BatchNumber *string          `json:"batch_number,omitempty"`
	MinQuantity *decimal.Decimal `json:"min_quantity,omitempty"`
}

// StockMovement is the request body for additions and withdrawals.
type StockMovement struct {
	Quantity        decimal.Decimal `json:"quantity"`
	SpecialistName  string          `json:"specialist_name"`
	TransactionDate string          `json:"transaction_date"` // empty = today
	Notes           string          `json:"notes"`
}
