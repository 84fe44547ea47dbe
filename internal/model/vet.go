package model

import "time"

// Final decisions recorded per animal group at inspection.
const (
	DecisionQuarantine = "حجر"
	DecisionRelease    = "فسح"
	DecisionReject     = "رفض"
	DecisionDestroy    = "إعدام"
)

// Animal is one line of a shipment manifest.
type Animal struct {
	AnimalType          string   `json:"animal_type"`
	Count               int      `json:"count"`
	FinalDecision       string   `json:"final_decision"`
	QuarantineLocation  string   `json:"quarantine_location,omitempty"`
	QuarantineLocations []string `json:"quarantine_locations,omitempty"`
}

// AnimalShipment is a veterinary procedure for a consignment of live animals.
type AnimalShipment struct {
	ID              string    `json:"id"`
	ProcedureNumber string    `json:"procedure_number"` // NNNN-YYYY-V
	ImporterName    string    `json:"importer_name"`
	CountryOfOrigin string    `json:"country_of_origin"`
	ArrivalDate     string    `json:"arrival_date"`
	Port            string    `json:"port"`
	Animals         []Animal  `json:"animals"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// QuarantineRelevant reports whether any animal group was sent to quarantine.
func (s AnimalShipment) QuarantineRelevant() bool {
	for _, a := range s.Animals {
		if a.FinalDecision == DecisionQuarantine {
			return true
		}
	}
	return false
}

// TraderEntry is an importer's quarantine record against a shipment.
type TraderEntry struct {
	ID              string    `json:"id"`
	ProcedureNumber string    `json:"procedure_number"`
	ImporterName    string    `json:"importer_name"`
	PermitNumber    string    `json:"permit_number"`
	StatementNumber string    `json:"statement_number"`
	Reasons         []string  `json:"reasons"`
	AnimalCount     int       `json:"animal_count,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AnimalShipmentInput struct {
	ProcedureNumber string   `json:"procedure_number"` // empty = auto-assign
	ImporterName    string   `json:"importer_name" binding:"required"`
	CountryOfOrigin string   `json:"country_of_origin"`
	ArrivalDate     string   `json:"arrival_date"`
	Port            string   `json:"port"`
	Animals         []Animal `json:"animals"`
}

type AnimalShipmentPatch struct {
	ProcedureNumber *string   `json:"procedure_number,omitempty"`
	ImporterName    *string   `json:"importer_name,omitempty"`
	CountryOfOrigin *string   `json:"country_of_origin,omitempty"`
	ArrivalDate     *string   `json:"arrival_date,omitempty"`
	Port            *string   `json:"port,omitempty"`
	Animals         *[]Animal `json:"animals,omitempty"`
}

type TraderEntryInput struct {
	ProcedureNumber string   `json:"procedure_number"`
	ImporterName    string   `json:"importer_name"`
	PermitNumber    string   `json:"permit_number"`
	StatementNumber string   `json:"statement_number"`
	Reasons         []string `json:"reasons"`
	AnimalCount     int      `json:"animal_count"`
}

type TraderEntryPatch struct {
	ProcedureNumber *string   `json:"procedure_number,omitempty"`
	ImporterName    *string   `json:"importer_name,omitempty"`
	PermitNumber    *string   `json:"permit_number,omitempty"`
	StatementNumber *string   `json:"statement_number,omitempty"`
	Reasons         *[]string `json:"reasons,omitempty"`
	AnimalCount     *int      `json:"animal_count,omitempty"`
}
