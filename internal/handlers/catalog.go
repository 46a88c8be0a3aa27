package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"finance-tracker/internal/log"
	"finance-tracker/internal/storage"
)

type expenseTypeRequest struct {
	ExpenseName *string `json:"expense_name"`
}

type vendorRequest struct {
	VendorName *string `json:"vendor_name"`
}

func derefName(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodeOptional decodes a JSON body, treating an empty body as no fields.
func decodeOptional(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ListExpenseTypes returns the caller's expense types.
func (h *Handlers) ListExpenseTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.db.ListExpenseTypes(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// CreateExpenseType returns the expense type with the submitted name,
// creating it for the caller when none exists.
func (h *Handlers) CreateExpenseType(w http.ResponseWriter, r *http.Request) {
	var req expenseTypeRequest
	if err := decodeOptional(r, &req); err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpCreate, fmt.Errorf("decode expense type: %w", err))
		return
	}

	t, _, err := h.db.FindOrCreateExpenseType(r.Context(), GetUserFromContext(r).ID, derefName(req.ExpenseName))
	if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateExpenseType renames one of the caller's expense types.
func (h *Handlers) UpdateExpenseType(w http.ResponseWriter, r *http.Request) {
	const notFound = "No expense type found with this id for this user"

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}

	var req expenseTypeRequest
	if err := decodeOptional(r, &req); err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpUpdate, fmt.Errorf("decode expense type: %w", err))
		return
	}

	err := h.db.UpdateExpenseType(r.Context(), GetUserFromContext(r).ID, id, req.ExpenseName)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Expense type updated successfully")
}

// DeleteExpenseType removes one of the caller's expense types. Expenses that
// referenced it keep existing without a type.
func (h *Handlers) DeleteExpenseType(w http.ResponseWriter, r *http.Request) {
	const notFound = "No expense type found with this id for this user"

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}

	err := h.db.DeleteExpenseType(r.Context(), GetUserFromContext(r).ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpDelete, err)
		return
	}
	writeMessage(w, http.StatusOK, "Expense type deleted successfully")
}

// ListVendors returns the caller's vendors.
func (h *Handlers) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.db.ListVendors(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

// CreateVendor returns the vendor with the submitted name, creating it for
// the caller when none exists.
func (h *Handlers) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if err := decodeOptional(r, &req); err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpCreate, fmt.Errorf("decode vendor: %w", err))
		return
	}

	v, _, err := h.db.FindOrCreateVendor(r.Context(), GetUserFromContext(r).ID, derefName(req.VendorName))
	if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// UpdateVendor renames one of the caller's vendors.
func (h *Handlers) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	const notFound = "No vendor found with this id for this user"

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}

	var req vendorRequest
	if err := decodeOptional(r, &req); err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpUpdate, fmt.Errorf("decode vendor: %w", err))
		return
	}

	err := h.db.UpdateVendor(r.Context(), GetUserFromContext(r).ID, id, req.VendorName)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Vendor updated successfully")
}

// DeleteVendor removes one of the caller's vendors.
func (h *Handlers) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	const notFound = "No vendor found with this id for this user"

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}

	err := h.db.DeleteVendor(r.Context(), GetUserFromContext(r).ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentCatalog, log.OpDelete, err)
		return
	}
	writeMessage(w, http.StatusOK, "Vendor deleted successfully")
}
