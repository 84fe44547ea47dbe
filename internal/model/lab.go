package model

import "time"

// ApprovalStatus enum constants
const (
	ApprovalDraft    = "draft"
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ValidApprovalStatus reports whether s is one of the workflow states of a test result.
func ValidApprovalStatus(s string) bool {
	switch s {
	case ApprovalDraft, ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// SavedSample is a received procedure. Its samples live in a separate collection
// and are joined back by SavedSampleID at read time.
type SavedSample struct {
	ID                      string    `json:"id"`
	ClientName              string    `json:"client_name"`
	ReceptionDate           string    `json:"reception_date"`
	InternalProcedureNumber string    `json:"internal_procedure_number"` // NNNN-YYYY-L
	ExternalProcedureNumber string    `json:"external_procedure_number"`
	CountryPort             string    `json:"country_port"`
	ReceiverName            string    `json:"receiver_name"`
	Notes                   string    `json:"notes,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Sample is a single specimen drawn under a procedure.
type Sample struct {
	ID            string    `json:"id"`
	SavedSampleID string    `json:"saved_sample_id"`
	SampleNumber  string    `json:"sample_number"`
	Department    string    `json:"department"`
	RequestedTest string    `json:"requested_test"`
	AnimalType    string    `json:"animal_type"`
	SampleCount   int       `json:"sample_count"`
	SampleType    string    `json:"sample_type,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConfirmatoryTest is the optional second-line test attached to a result.
type ConfirmatoryTest struct {
	TestMethod      string `json:"test_method"`
	TestResult      string `json:"test_result"`
	PositiveSamples int    `json:"positive_samples"`
	TestDate        string `json:"test_date,omitempty"`
}

// TestResult records the outcome of a test on a sample.
// Only approved results count toward sample completion.
type TestResult struct {
	ID               string            `json:"id"`
	SampleID         string            `json:"sample_id"`
	TestDate         string            `json:"test_date"`
	TestMethod       string            `json:"test_method"`
	TestResult       string            `json:"test_result"`
	PositiveSamples  int               `json:"positive_samples"`
	ConfirmatoryTest *ConfirmatoryTest `json:"confirmatory_test,omitempty"`
	ApprovalStatus   string            `json:"approval_status"`
	SpecialistName   string            `json:"specialist_name,omitempty"`
	ApprovedBy       string            `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	RejectionReason  string            `json:"rejection_reason,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// --- Inputs & patches ---

type SavedSampleInput struct {
	ClientName              string `json:"client_name" binding:"required"`
	ReceptionDate           string `json:"reception_date" binding:"required"`
	InternalProcedureNumber string `json:"internal_procedure_number"` // empty = auto-assign
	ExternalProcedureNumber string `json:"external_procedure_number"`
	CountryPort             string `json:"country_port"`
	ReceiverName            string `json:"receiver_name"`
	Notes                   string `json:"notes"`
}

type SavedSamplePatch struct {
	ClientName              *string `json:"client_name,omitempty"`
	ReceptionDate           *string `json:"reception_date,omitempty"`
	InternalProcedureNumber *string `json:"internal_procedure_number,omitempty"`
	ExternalProcedureNumber *string `json:"external_procedure_number,omitempty"`
	CountryPort             *string `json:"country_port,omitempty"`
	ReceiverName            *string `json:"receiver_name,omitempty"`
	Notes                   *string `json:"notes,omitempty"`
}

type SampleInput struct {
	SavedSampleID string `json:"saved_sample_id" binding:"required"`
	SampleNumber  string `json:"sample_number"`
	Department    string `json:"department" binding:"required"`
	RequestedTest string `json:"requested_test" binding:"required"`
	AnimalType    string `json:"animal_type"`
	SampleCount   int    `json:"sample_count"`
	SampleType    string `json:"sample_type"`
	Notes         string `json:"notes"`
}

type SamplePatch struct {
	SampleNumber  *string `json:"sample_number,omitempty"`
	Department    *string `json:"department,omitempty"`
	RequestedTest *string `json:"requested_test,omitempty"`
	AnimalType    *string `json:"animal_type,omitempty"`
	SampleCount   *int    `json:"sample_count,omitempty"`
	SampleType    *string `json:"sample_type,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type TestResultInput struct {
	SampleID         string            `json:"sample_id" binding:"required"`
	TestDate         string            `json:"test_date"`
	TestMethod       string            `json:"test_method"`
	TestResult       string            `json:"test_result"`
	PositiveSamples  int               `json:"positive_samples"`
	ConfirmatoryTest *ConfirmatoryTest `json:"confirmatory_test"`
	ApprovalStatus   string            `json:"approval_status"` // empty = draft
	SpecialistName   string            `json:"specialist_name"`
	Notes            string            `json:"notes"`
}

type TestResultPatch struct {
	TestDate         *string           `json:"test_date,omitempty"`
	TestMethod       *string           `json:"test_method,omitempty"`
	TestResult       *string           `json:"test_result,omitempty"`
	PositiveSamples  *int              `json:"positive_samples,omitempty"`
	ConfirmatoryTest *ConfirmatoryTest `json:"confirmatory_test,omitempty"`
	ApprovalStatus   *string           `json:"approval_status,omitempty"`
	SpecialistName   *string           `json:"specialist_name,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
}
