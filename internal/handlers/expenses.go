package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/query"
	"finance-tracker/internal/storage"
)

const (
	msgExpenseNotFound = "No expense entry found with this id for this user"
	msgExpenseUpdated  = "Expense entry updated successfully"
	msgExpenseDeleted  = "Expense entry deleted successfully"
	msgUserNotFound    = "User not found"
)

type listExpensesResponse struct {
	User        *models.User     `json:"user"`
	ExpenseData []models.Expense `json:"expenseData"`
}

// ListExpenses returns the caller's expenses narrowed by the query string.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.GetUserByID(r.Context(), GetUserFromContext(r).ID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpList, err)
		return
	}

	filter, err := query.ParseExpenseFilter(r.URL.Query())
	if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpList, fmt.Errorf("parse filter: %w", err))
		return
	}

	expenses, err := h.db.ListExpenses(r.Context(), user.ID, filter)
	if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpList, err)
		return
	}

	writeJSON(w, http.StatusOK, listExpensesResponse{User: user, ExpenseData: expenses})
}

// CreateExpense stores a new expense owned by the caller.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID := GetUserFromContext(r).ID

	var e models.Expense
	if err := decodeJSON(r, &e); err != nil {
		internalError(w, r, log.ComponentExpense, log.OpCreate, fmt.Errorf("decode expense: %w", err))
		return
	}
	e.ID = 0
	e.UserID = userID
	e.ExpenseType, e.Vendor = nil, nil

	if err := h.db.CreateExpense(r.Context(), &e); err != nil {
		internalError(w, r, log.ComponentExpense, log.OpCreate, err)
		return
	}

	h.publish(r, events.ExpenseCreated, userID, e.ID)
	writeJSON(w, http.StatusCreated, e)
}

// UpdateExpense applies a partial update to one of the caller's expenses.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	userID := GetUserFromContext(r).ID

	var patch models.ExpensePatch
	if err := decodeJSON(r, &patch); err != nil && !errors.Is(err, io.EOF) {
		internalError(w, r, log.ComponentExpense, log.OpUpdate, fmt.Errorf("decode expense: %w", err))
		return
	}

	err := h.db.UpdateExpense(r.Context(), userID, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgExpenseNotFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpUpdate, err)
		return
	}

	h.publish(r, events.ExpenseUpdated, userID, id)
	writeMessage(w, http.StatusOK, msgExpenseUpdated)
}

// DeleteExpense removes one of the caller's expenses.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	userID := GetUserFromContext(r).ID

	err := h.db.DeleteExpense(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgExpenseNotFound)
		return
	} else if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpDelete, err)
		return
	}

	h.publish(r, events.ExpenseDeleted, userID, id)
	writeMessage(w, http.StatusOK, msgExpenseDeleted)
}

// publish sends an expense event. Failures are logged only.
func (h *Handlers) publish(r *http.Request, eventType string, userID, expenseID int64) {
	event := events.NewExpenseEvent(eventType, userID, expenseID)
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentEvents).WarnContext(r.Context(),
			"Failed to publish expense event",
			log.FieldEventType, eventType,
			log.FieldExpenseID, expenseID,
			log.FieldError, err,
		)
	}
}
