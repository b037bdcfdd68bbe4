package domain

import (
	"fmt"
	"time"
)

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

type Invoice struct {
	ID          string
	AccountID   string
	Number      string
	Description string
	AmountCents int64
	Currency    string
	Status      InvoiceStatus
	IssuedAt    time.Time
	PaidAt      *time.Time // nullable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Amount formats the total as "12.34 AUD".
func (i Invoice) Amount() string {
	sign := ""
	c := i.AmountCents
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, c/100, c%100, i.Currency)
}

func (i Invoice) String() string { return i.Number }
