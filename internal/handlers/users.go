package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

const (
	msgBadCredentials = "Incorrect email or password, please try again"
	msgLoggedIn       = "You are now logged in!"
	msgNoSession      = "No active session"

	minPasswordLength = 8
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// Login checks the credentials and starts a session. Unknown emails and wrong
// passwords get the same answer.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadCredentials)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, msgBadCredentials)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		internalError(w, r, log.ComponentAuth, log.OpLogin, err)
		return
	}
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusBadRequest, msgBadCredentials)
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		internalError(w, r, log.ComponentAuth, log.OpLogin, fmt.Errorf("generate session token: %w", err))
		return
	}

	expiresAt := time.Now().Add(h.cfg.SessionDuration)
	if err := h.db.CreateSession(r.Context(), token, user.ID, expiresAt); err != nil {
		internalError(w, r, log.ComponentAuth, log.OpLogin, fmt.Errorf("create session: %w", err))
		return
	}

	h.setSessionCookie(w, token)
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
		InfoContext(r.Context(), "User logged in", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, loginResponse{User: user, Message: msgLoggedIn})
}

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (req registerRequest) validate() error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return errors.New("first and last name are required")
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return errors.New("a valid email address is required")
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if req.Password != req.ConfirmPassword {
		return errors.New("passwords do not match")
	}
	return nil
}

// RegisterUser creates an account. It does not log the new user in.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := req.validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.db.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeMessage(w, http.StatusBadRequest, "An account with this email already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		internalError(w, r, log.ComponentAuth, log.OpRegister, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, r, log.ComponentAuth, log.OpRegister, fmt.Errorf("hash password: %w", err))
		return
	}

	user, err := h.db.CreateUser(r.Context(), models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		internalError(w, r, log.ComponentAuth, log.OpRegister, fmt.Errorf("create user: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Logout ends the caller's session. Without one it answers 404.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeMessage(w, http.StatusNotFound, msgNoSession)
		return
	}

	err = h.db.DeleteSession(r.Context(), cookie.Value)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.clearSessionCookie(w)
		writeMessage(w, http.StatusNotFound, msgNoSession)
		return
	case err != nil:
		internalError(w, r, log.ComponentAuth, log.OpLogout, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
