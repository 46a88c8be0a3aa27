package handlers

import (
	"net/http"

	"finance-tracker/internal/log"
)

// ExpenseTotal answers with the sum of every expense the caller owns, as a
// bare JSON number. Listing filters do not apply.
func (h *Handlers) ExpenseTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.db.ExpenseTotal(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		internalError(w, r, log.ComponentExpense, log.OpTotal, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}
