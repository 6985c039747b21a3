package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RegistrationStatus captures the admission workflow state.
type RegistrationStatus string

const (
	RegistrationPendingReview  RegistrationStatus = "PENDING_REVIEW"
	RegistrationPendingPayment RegistrationStatus = "PENDING_PAYMENT"
	RegistrationApproved       RegistrationStatus = "APPROVED"
	RegistrationRejected       RegistrationStatus = "REJECTED"
)

// Valid returns true when the status is a supported value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPendingReview, RegistrationPendingPayment, RegistrationApproved, RegistrationRejected:
		return true
	default:
		return false
	}
}

// Answer is one question/answer pair of the application form.
type Answer struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"`
}

// Answers is persisted as a JSON document.
type Answers []Answer

// Value marshals answers to JSON for persistence.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		a = Answers{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal registration answers: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals the JSON column.
func (a *Answers) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*a = Answers{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Answers", value)
	}
	if len(data) == 0 {
		*a = Answers{}
		return nil
	}
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("unmarshal registration answers: %w", err)
	}
	return nil
}

// Registration is an application awaiting admission and payment.
type Registration struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	Email       string             `db:"email" json:"email"`
	Package     PackageOption      `db:"package" json:"package"`
	Answers     Answers            `db:"answers" json:"answers"`
	Status      RegistrationStatus `db:"status" json:"status"`
	SubmittedAt time.Time          `db:"submitted_at" json:"submittedAt"`
	ReviewedAt  *time.Time         `db:"reviewed_at" json:"reviewedAt,omitempty"`
}

// RegistrationFilter scopes listing queries.
type RegistrationFilter struct {
	Status   RegistrationStatus
	Search   string
	Page     int
	PageSize int
}
