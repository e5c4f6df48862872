package extract

import "github.com/shopspring/decimal"

// TicketRecord holds the fields extracted from a betting ticket. Optional
// fields are nil when no pattern matched; an unset field is distinct from
// an empty one.
type TicketRecord struct {
	TicketID *string          `json:"ticket_id,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency *string          `json:"currency,omitempty"`
	Date     *string          `json:"date,omitempty"`
	Events   []string         `json:"events"`
}

// DocumentRecord holds the fields extracted from an identity document.
type DocumentRecord struct {
	DocumentNumber *string `json:"document_number,omitempty"`
	FullName       *string `json:"full_name,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
	Nationality    *string `json:"nationality,omitempty"`
}

func strPtr(s string) *string { return &s }
