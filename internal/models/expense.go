package models

import (
	"github.com/shopspring/decimal"
)

// Expense represents a single bill owed or paid by a user.
type Expense struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TypeID        *int64          `json:"type_id"`
	VendorID      *int64          `json:"vendor_id"`
	InvoiceID     string          `json:"invoice_id"`
	IssueDate     Date            `json:"issue_date"`
	DueDate       Date            `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`

	// Populated by listings only.
	ExpenseType *ExpenseType `json:"expense_type"`
	Vendor      *Vendor      `json:"vendor"`
}

// ExpensePatch carries the fields of a partial expense update.
// Nil fields are left untouched.
type ExpensePatch struct {
	TypeID        *int64           `json:"type_id"`
	VendorID      *int64           `json:"vendor_id"`
	InvoiceID     *string          `json:"invoice_id"`
	IssueDate     *Date            `json:"issue_date"`
	DueDate       *Date            `json:"due_date"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentStatus *string          `json:"payment_status"`
}

// ExpenseType is a user-defined expense category.
type ExpenseType struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	ExpenseName string `json:"expense_name"`
}

// Vendor is the party an expense is owed to.
type Vendor struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	VendorName string `json:"vendor_name"`
}
