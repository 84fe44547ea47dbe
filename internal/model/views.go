package model

// SavedSampleWithSamples is a procedure joined with its child samples.
type SavedSampleWithSamples struct {
	SavedSample
	Samples []Sample `json:"samples"`
}

// TestResultWithDetails is a result enriched with the display fields of its sample and procedure.
type TestResultWithDetails struct {
	TestResult
	SampleNumber            string `json:"sample_number"`
	Department              string `json:"department"`
	RequestedTest           string `json:"requested_test"`
	AnimalType              string `json:"animal_type"`
	SavedSampleID           string `json:"saved_sample_id"`
	ClientName              string `json:"client_name"`
	ReceptionDate           string `json:"reception_date"`
	InternalProcedureNumber string `json:"internal_procedure_number"`
	ExternalProcedureNumber string `json:"external_procedure_number"`
}

// ProcedureSummary counts sample completion for one procedure.
type ProcedureSummary struct {
	SavedSampleID           string `json:"saved_sample_id"`
	InternalProcedureNumber string `json:"internal_procedure_number"`
	ClientName              string `json:"client_name"`
	TotalSamples            int    `json:"total_samples"`
	CompletedSamples        int    `json:"completed_samples"`
	Completed               bool   `json:"completed"`
}

// ShipmentWithTraders is a shipment joined with the trader entries filed under its procedure number.
type ShipmentWithTraders struct {
	AnimalShipment
	Traders            []TraderEntry `json:"traders"`
	QuarantineRelevant bool          `json:"quarantine_relevant"`
}

// Alert kinds derived from inventory state.
const (
	AlertLowStock     = "low_stock"
	AlertExpiringSoon = "expiring_soon"
	AlertExpired      = "expired"
)

// Alert is a derived, non-persisted warning about an inventory item.
type Alert struct {
	ID       string `json:"id"` // kind:item_id
	Kind     string `json:"kind"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Message  string `json:"message"`
}
