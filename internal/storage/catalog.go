package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-tracker/internal/models"
)

// ErrNameRequired is returned by find-or-create when the name is empty.
var ErrNameRequired = errors.New("name is required")

// catalog describes a per-user lookup table keyed by a natural name.
// Expense types and vendors share this shape.
type catalog struct {
	table      string
	nameColumn string
}

var (
	expenseTypes = catalog{table: "expense_types", nameColumn: "expense_name"}
	vendors      = catalog{table: "vendors", nameColumn: "vendor_name"}
)

type namedRow struct {
	ID     int64
	UserID int64
	Name   string
}

func (c catalog) list(ctx context.Context, db *DB, userID int64) ([]namedRow, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, user_id, "+c.nameColumn+" FROM "+c.table+" WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// findOrCreate returns the row named name, creating it for userID when none
// exists. Unless scopedNameLookup is set the lookup ignores the owner.
func (c catalog) findOrCreate(ctx context.Context, db *DB, userID int64, name string) (namedRow, bool, error) {
	if name == "" {
		return namedRow{}, false, ErrNameRequired
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return namedRow{}, false, err
	}
	defer tx.Rollback()

	lookup := "SELECT id, user_id, " + c.nameColumn + " FROM " + c.table + " WHERE " + c.nameColumn + " = ?"
	args := []any{name}
	if db.scopedNameLookup {
		lookup += " AND user_id = ?"
		args = append(args, userID)
	}
	lookup += " ORDER BY id LIMIT 1"

	var r namedRow
	err = tx.QueryRowContext(ctx, lookup, args...).Scan(&r.ID, &r.UserID, &r.Name)
	switch {
	case err == nil:
		return r, false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return namedRow{}, false, fmt.Errorf("lookup %s: %w", c.table, err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO "+c.table+" (user_id, "+c.nameColumn+") VALUES (?, ?)",
		userID, name,
	)
	if err != nil {
		return namedRow{}, false, fmt.Errorf("insert %s: %w", c.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return namedRow{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return namedRow{}, false, err
	}
	return namedRow{ID: id, UserID: userID, Name: name}, true, nil
}

func (c catalog) rename(ctx context.Context, db *DB, userID, id int64, name *string) error {
	set := "user_id = user_id"
	args := []any{}
	if name != nil {
		set = c.nameColumn + " = ?"
		args = append(args, *name)
	}
	args = append(args, id, userID)

	res, err := db.conn.ExecContext(ctx,
		"UPDATE "+c.table+" SET "+set+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (c catalog) delete(ctx context.Context, db *DB, userID, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM "+c.table+" WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ListExpenseTypes returns the expense types owned by userID.
func (db *DB) ListExpenseTypes(ctx context.Context, userID int64) ([]models.ExpenseType, error) {
	rows, err := expenseTypes.list(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExpenseType, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ExpenseType{ID: r.ID, UserID: r.UserID, ExpenseName: r.Name})
	}
	return out, nil
}

// FindOrCreateExpenseType returns the expense type called name, creating it
// for userID if needed. The boolean reports whether a row was created.
func (db *DB) FindOrCreateExpenseType(ctx context.Context, userID int64, name string) (*models.ExpenseType, bool, error) {
	r, created, err := expenseTypes.findOrCreate(ctx, db, userID, name)
	if err != nil {
		return nil, false, err
	}
	return &models.ExpenseType{ID: r.ID, UserID: r.UserID, ExpenseName: r.Name}, created, nil
}

// UpdateExpenseType renames the expense type id owned by userID. A nil name
// leaves the row untouched but still reports ErrNotFound for foreign ids.
func (db *DB) UpdateExpenseType(ctx context.Context, userID, id int64, name *string) error {
	return expenseTypes.rename(ctx, db, userID, id, name)
}

// DeleteExpenseType removes the expense type id owned by userID.
func (db *DB) DeleteExpenseType(ctx context.Context, userID, id int64) error {
	return expenseTypes.delete(ctx, db, userID, id)
}

// ListVendors returns the vendors owned by userID.
func (db *DB) ListVendors(ctx context.Context, userID int64) ([]models.Vendor, error) {
	rows, err := vendors.list(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Vendor, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Vendor{ID: r.ID, UserID: r.UserID, VendorName: r.Name})
	}
	return out, nil
}

// FindOrCreateVendor returns the vendor called name, creating it for userID
// if needed. The boolean reports whether a row was created.
func (db *DB) FindOrCreateVendor(ctx context.Context, userID int64, name string) (*models.Vendor, bool, error) {
	r, created, err := vendors.findOrCreate(ctx, db, userID, name)
	if err != nil {
		return nil, false, err
	}
	return &models.Vendor{ID: r.ID, UserID: r.UserID, VendorName: r.Name}, created, nil
}

// UpdateVendor renames the vendor id owned by userID.
func (db *DB) UpdateVendor(ctx context.Context, userID, id int64, name *string) error {
	return vendors.rename(ctx, db, userID, id, name)
}

// DeleteVendor removes the vendor id owned by userID.
func (db *DB) DeleteVendor(ctx context.Context, userID, id int64) error {
	return vendors.delete(ctx, db, userID, id)
}
