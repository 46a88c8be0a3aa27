package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/query"

	"github.com/shopspring/decimal"
)

const expenseColumns = "e.id, e.user_id, e.type_id, e.vendor_id, e.invoice_id, e.issue_date, e.due_date, e.amount, e.payment_status"

// CreateExpense inserts e for its owner and fills in the generated ID.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO expenses (user_id, type_id, vendor_id, invoice_id, issue_date, due_date, amount, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.TypeID, e.VendorID, e.InvoiceID, e.IssueDate, e.DueDate, e.Amount, e.PaymentStatus,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// GetExpense retrieves a single expense owned by userID.
func (db *DB) GetExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses e WHERE e.id = ? AND e.user_id = ?",
		id, userID,
	)

	var e models.Expense
	if err := row.Scan(&e.ID, &e.UserID, &e.TypeID, &e.VendorID, &e.InvoiceID,
		&e.IssueDate, &e.DueDate, &e.Amount, &e.PaymentStatus); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// UpdateExpense applies the non-nil fields of p to the expense id owned by
// userID. It returns ErrNotFound when the user owns no such expense.
func (db *DB) UpdateExpense(ctx context.Context, userID, id int64, p models.ExpensePatch) error {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.TypeID != nil {
		set("type_id", *p.TypeID)
	}
	if p.VendorID != nil {
		set("vendor_id", *p.VendorID)
	}
	if p.InvoiceID != nil {
		set("invoice_id", *p.InvoiceID)
	}
	if p.IssueDate != nil {
		set("issue_date", *p.IssueDate)
	}
	if p.DueDate != nil {
		set("due_date", *p.DueDate)
	}
	if p.Amount != nil {
		set("amount", *p.Amount)
	}
	if p.PaymentStatus != nil {
		set("payment_status", *p.PaymentStatus)
	}
	if len(sets) == 0 {
		// Nothing to change; still report whether the row exists.
		sets = append(sets, "user_id = user_id")
	}

	args = append(args, id, userID)
	res, err := db.conn.ExecContext(ctx,
		"UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// DeleteExpense removes the expense id owned by userID.
func (db *DB) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ListExpenses returns the expenses of userID matching f, each with its
// expense type and vendor. Related rows owned by another user are not joined.
func (db *DB) ListExpenses(ctx context.Context, userID int64, f query.ExpenseFilter) ([]models.Expense, error) {
	where, args := f.Where(userID)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+expenseColumns+`,
		       t.id, t.user_id, t.expense_name,
		       v.id, v.user_id, v.vendor_name
		FROM expenses e
		LEFT JOIN expense_types t ON t.id = e.type_id AND t.user_id = e.user_id
		LEFT JOIN vendors v ON v.id = e.vendor_id AND v.user_id = e.user_id
		WHERE `+where+`
		ORDER BY `+f.OrderBy(),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		var typeID, typeUserID, vendorID, vendorUserID sql.NullInt64
		var typeName, vendorName sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.TypeID, &e.VendorID, &e.InvoiceID,
			&e.IssueDate, &e.DueDate, &e.Amount, &e.PaymentStatus,
			&typeID, &typeUserID, &typeName,
			&vendorID, &vendorUserID, &vendorName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if typeID.Valid {
			e.ExpenseType = &models.ExpenseType{ID: typeID.Int64, UserID: typeUserID.Int64, ExpenseName: typeName.String}
		}
		if vendorID.Valid {
			e.Vendor = &models.Vendor{ID: vendorID.Int64, UserID: vendorUserID.Int64, VendorName: vendorName.String}
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// ExpenseTotal sums the amounts of every expense owned by userID, ignoring
// any listing filter. Each amount is converted to float64 and added as such.
func (db *DB) ExpenseTotal(ctx context.Context, userID int64) (float64, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT amount FROM expenses WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("query amounts: %w", err)
	}
	defer rows.Close()

	var total float64
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return 0, fmt.Errorf("scan amount: %w", err)
		}
		total += amount.InexactFloat64()
	}

	return total, rows.Err()
}
