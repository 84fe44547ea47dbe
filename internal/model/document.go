package model

import "time"

// Storage keys of the persisted documents.
const (
	LabDocumentKey = "lab_database"
	VetDocumentKey = "vet_database"
	SessionKey     = "currentUser"
)

// LabDocument is the whole laboratory database, persisted as one JSON value.
type LabDocument struct {
	SavedSamples          []SavedSample          `json:"saved_samples"`
	Samples               []Sample               `json:"samples"`
	TestResults           []TestResult           `json:"test_results"`
	InventoryItems        []InventoryItem        `json:"inventory_items"`
	InventoryTransactions []InventoryTransaction `json:"inventory_transactions"`
	Users                 []User                 `json:"users"`
	Notifications         []Notification         `json:"notifications"`
}

// NewLabDocument returns an empty document with every collection present.
func NewLabDocument() *LabDocument {
	return &LabDocument{
		SavedSamples:          []SavedSample{},
		Samples:               []Sample{},
		TestResults:           []TestResult{},
		InventoryItems:        []InventoryItem{},
		InventoryTransactions: []InventoryTransaction{},
		Users:                 []User{},
		Notifications:         []Notification{},
	}
}

// Normalize replaces nil collections (missing keys in older documents) with empty ones.
func (d *LabDocument) Normalize() {
	if d.SavedSamples == nil {
		d.SavedSamples = []SavedSample{}
	}
	if d.Samples == nil {
		d.Samples = []Sample{}
	}
	if d.TestResults == nil {
		d.TestResults = []TestResult{}
	}
	if d.InventoryItems == nil {
		d.InventoryItems = []InventoryItem{}
	}
	if d.InventoryTransactions == nil {
		d.InventoryTransactions = []InventoryTransaction{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
}

// VetDocument is the whole veterinary/quarantine database.
type VetDocument struct {
	AnimalShipments   []AnimalShipment `json:"animal_shipments"`
	QuarantineTraders []TraderEntry    `json:"quarantine_traders"`
	Users             []User           `json:"users"`
	Notifications     []Notification   `json:"notifications"`
}

func NewVetDocument() *VetDocument {
	return &VetDocument{
		AnimalShipments:   []AnimalShipment{},
		QuarantineTraders: []TraderEntry{},
		Users:             []User{},
		Notifications:     []Notification{},
	}
}

func (d *VetDocument) Normalize() {
	if d.AnimalShipments == nil {
		d.AnimalShipments = []AnimalShipment{}
	}
	if d.QuarantineTraders == nil {
		d.QuarantineTraders = []TraderEntry{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
}

// StoredDocument is the Postgres row holding one serialized document per storage key.
type StoredDocument struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Payload   string    `gorm:"type:jsonb;not null" json:"payload"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
