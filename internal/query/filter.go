// Package query turns expense listing parameters into SQL predicates.
//
// Every predicate produced here is scoped to a single owning user. Optional
// conditions are ANDed together; a date range only applies when both of its
// bounds are present, a lone bound is dropped without error.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"finance-tracker/internal/models"
)

// Query parameter names accepted by ParseExpenseFilter.
const (
	ParamInvoiceID      = "invoice_id"
	ParamStartIssueDate = "start_issue_date"
	ParamEndIssueDate   = "end_issue_date"
	ParamStartDueDate   = "start_due_date"
	ParamEndDueDate     = "end_due_date"
	ParamExpenseType    = "expense_type"
	ParamVendor         = "vendor"
	ParamPaymentStatus  = "payment_status"
	ParamSort           = "sort"
	ParamOrder          = "order"
)

var (
	// ErrInvalidSortField is returned for a sort field outside the sortable set.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidSortOrder is returned for an order other than asc or desc.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// sortableColumns maps accepted sort names to expense columns.
var sortableColumns = map[string]string{
	"id":             "e.id",
	"invoice_id":     "e.invoice_id",
	"issue_date":     "e.issue_date",
	"due_date":       "e.due_date",
	"amount":         "e.amount",
	"payment_status": "e.payment_status",
	"type_id":        "e.type_id",
	"expense_type":   "e.type_id",
	"vendor_id":      "e.vendor_id",
	"vendor":         "e.vendor_id",
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start models.Date
	End   models.Date
}

// Sort is a validated ordering directive.
type Sort struct {
	Field     string
	Direction Direction
}

// ExpenseFilter holds the optional conditions of an expense listing.
// A nil field means the condition is absent.
type ExpenseFilter struct {
	InvoiceID     *string
	IssueDate     *DateRange
	DueDate       *DateRange
	TypeID        *int64
	VendorID      *int64
	PaymentStatus *string
	Sort          *Sort
}

// ParseExpenseFilter builds an ExpenseFilter from URL query values.
// Empty values count as absent.
func ParseExpenseFilter(values url.Values) (ExpenseFilter, error) {
	var f ExpenseFilter

	if v := values.Get(ParamInvoiceID); v != "" {
		f.InvoiceID = &v
	}

	issue, err := parseRange(values.Get(ParamStartIssueDate), values.Get(ParamEndIssueDate))
	if err != nil {
		return ExpenseFilter{}, fmt.Errorf("issue date range: %w", err)
	}
	f.IssueDate = issue

	due, err := parseRange(values.Get(ParamStartDueDate), values.Get(ParamEndDueDate))
	if err != nil {
		return ExpenseFilter{}, fmt.Errorf("due date range: %w", err)
	}
	f.DueDate = due

	if f.TypeID, err = parseID(ParamExpenseType, values.Get(ParamExpenseType)); err != nil {
		return ExpenseFilter{}, err
	}
	if f.VendorID, err = parseID(ParamVendor, values.Get(ParamVendor)); err != nil {
		return ExpenseFilter{}, err
	}

	if v := values.Get(ParamPaymentStatus); v != "" {
		f.PaymentStatus = &v
	}

	if f.Sort, err = parseSort(values.Get(ParamSort), values.Get(ParamOrder)); err != nil {
		return ExpenseFilter{}, err
	}

	return f, nil
}

// Where returns the WHERE clause body and its arguments. Columns are
// qualified with the "e" alias of the expenses table.
func (f ExpenseFilter) Where(userID int64) (string, []any) {
	clauses := []string{"e.user_id = ?"}
	args := []any{userID}

	if f.InvoiceID != nil {
		clauses = append(clauses, "e.invoice_id = ?")
		args = append(args, *f.InvoiceID)
	}
	if f.IssueDate != nil {
		clauses = append(clauses, "e.issue_date BETWEEN ? AND ?")
		args = append(args, f.IssueDate.Start, f.IssueDate.End)
	}
	if f.DueDate != nil {
		clauses = append(clauses, "e.due_date BETWEEN ? AND ?")
		args = append(args, f.DueDate.Start, f.DueDate.End)
	}
	if f.TypeID != nil {
		clauses = append(clauses, "e.type_id = ?")
		args = append(args, *f.TypeID)
	}
	if f.VendorID != nil {
		clauses = append(clauses, "e.vendor_id = ?")
		args = append(args, *f.VendorID)
	}
	if f.PaymentStatus != nil {
		clauses = append(clauses, "e.payment_status = ?")
		args = append(args, *f.PaymentStatus)
	}

	return strings.Join(clauses, " AND "), args
}

// OrderBy returns the ORDER BY clause body. Without a sort directive rows
// keep insertion order; ties under a directive also fall back to it.
func (f ExpenseFilter) OrderBy() string {
	if f.Sort == nil {
		return "e.id ASC"
	}
	column := sortableColumns[f.Sort.Field]
	if column == "e.id" {
		return column + " " + string(f.Sort.Direction)
	}
	return column + " " + string(f.Sort.Direction) + ", e.id ASC"
}

func parseRange(start, end string) (*DateRange, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := models.ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := models.ParseDate(end)
	if err != nil {
		return nil, err
	}
	return &DateRange{Start: s, End: e}, nil
}

func parseID(param, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", param, raw, err)
	}
	return &id, nil
}

func parseSort(field, order string) (*Sort, error) {
	if field == "" {
		return nil, nil
	}
	if _, ok := sortableColumns[field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}

	dir := Ascending
	switch strings.ToLower(order) {
	case "", "asc":
	case "desc":
		dir = Descending
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}

	return &Sort{Field: field, Direction: dir}, nil
}
