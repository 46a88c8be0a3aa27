// Package handlers implements the JSON HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// DefaultSessionDuration is how long sessions last unless configured.
	DefaultSessionDuration = 30 * 24 * time.Hour
)

const (
	msgInternalError   = "Internal server error"
	msgUnauthenticated = "You must be logged in to do that"
)

// Config carries the handler settings taken from the server configuration.
type Config struct {
	SecureCookie    bool
	SessionDuration time.Duration
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db        *storage.DB
	publisher events.Publisher
	cfg       Config
}

// NewHandlers creates a new Handlers instance. A nil publisher drops events.
func NewHandlers(db *storage.DB, publisher events.Publisher, cfg Config) *Handlers {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}
	return &Handlers{db: db, publisher: publisher, cfg: cfg}
}

// Register attaches every API route to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /user/login", h.Login)
	mux.HandleFunc("POST /user/register", h.RegisterUser)
	mux.HandleFunc("POST /user/logout", h.Logout)

	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.AuthMiddleware(fn))
	}

	protected("GET /api/expense", h.ListExpenses)
	protected("POST /api/expense/addexpense", h.CreateExpense)
	protected("GET /api/expense/total", h.ExpenseTotal)
	protected("PUT /api/expense/{id}", h.UpdateExpense)
	protected("DELETE /api/expense/{id}", h.DeleteExpense)

	protected("GET /api/expense/type", h.ListExpenseTypes)
	protected("POST /api/expense/type", h.CreateExpenseType)
	protected("PUT /api/expense/type/{id}", h.UpdateExpenseType)
	protected("DELETE /api/expense/type/{id}", h.DeleteExpenseType)

	protected("GET /api/expense/vendor", h.ListVendors)
	protected("POST /api/expense/vendor", h.CreateVendor)
	protected("PUT /api/expense/vendor/{id}", h.UpdateVendor)
	protected("DELETE /api/expense/vendor/{id}", h.DeleteVendor)
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeMessage(w, http.StatusUnauthorized, msgUnauthenticated)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			writeMessage(w, http.StatusUnauthorized, msgUnauthenticated)
			return
		}

		// Rolling session: renew if past halfway point
		now := time.Now()
		if sessionInfo.ExpiresAt.Sub(now) < h.cfg.SessionDuration/2 {
			newExpiresAt := now.Add(h.cfg.SessionDuration)
			if err := h.db.RenewSession(r.Context(), cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			} else {
				log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
					WarnContext(r.Context(), "Failed to renew session", log.FieldError, err)
			}
		}

		ctx := context.WithValue(r.Context(), UserContextKey, sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// messageResponse is the body of every error and of update/delete replies.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// internalError logs err and answers with the generic 500 body.
func internalError(w http.ResponseWriter, r *http.Request, component, op string, err error) {
	log.FromContext(r.Context()).WithComponent(component).ErrorContext(r.Context(), "Request failed",
		log.FieldOperation, op,
		log.FieldError, err,
	)
	writeMessage(w, http.StatusInternalServerError, msgInternalError)
}

// pathID parses the {id} path segment. ok is false for non-numeric ids.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
