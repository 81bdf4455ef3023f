package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/MrLotU/user-profile-be/internal/auth"
	"github.com/MrLotU/user-profile-be/internal/models"
	"github.com/MrLotU/user-profile-be/internal/services"
)

// AccountHandler handles sign-up, sign-in, sign-out and password
// changes.
type AccountHandler struct {
	accounts services.AccountServiceProvider
	events   services.EventServiceProvider
	tokens   *auth.Manager
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts services.AccountServiceProvider, events services.EventServiceProvider, tokens *auth.Manager) *AccountHandler {
	return &AccountHandler{accounts: accounts, events: events, tokens: tokens}
}

// SignUpPayload defines the structure for registration requests.
type SignUpPayload struct {
	Username  string `json:"username"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// SignInPayload defines the structure for login requests.
type SignInPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordPayload defines the structure for password changes.
type ChangePasswordPayload struct {
	OldPassword  string `json:"oldPassword"`
	NewPassword1 string `json:"newPassword1"`
	NewPassword2 string `json:"newPassword2"`
}

// SignUp handles new user registration. An already authenticated
// caller is told so and nothing changes.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()).IsAuthenticated() {
		respondMessage(w, http.StatusOK, "You're already logged in!")
		return
	}

	var payload SignUpPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Username == "" || payload.Password1 == "" || payload.Password2 == "" {
		respondError(w, http.StatusBadRequest, "This field is required.")
		return
	}
	if payload.Password1 != payload.Password2 {
		respondError(w, http.StatusBadRequest, "The two password fields didn't match.")
		return
	}

	user, err := h.accounts.CreateUser(payload.Username, payload.Password1)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to sign up user")
		respondServiceError(w, err)
		return
	}

	h.establishSession(w, user)
	h.record("account.signup", user.ID, "account created")

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "You're now a user! You've been signed in, too.",
		"user":    user,
	})
}

// SignIn handles authentication. An already authenticated caller is
// told so and nothing changes.
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()).IsAuthenticated() {
		respondMessage(w, http.StatusOK, "You're already logged in!")
		return
	}

	var payload SignInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.Authenticate(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		respondServiceError(w, err)
		return
	}

	h.establishSession(w, user)
	h.record("account.signin", user.ID, "signed in")

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// SignOut drops the session unconditionally.
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	auth.ClearSessionCookie(w)
	h.record("account.signout", session.UserID, "signed out")
	respondMessage(w, http.StatusOK, "You've been signed out. Come back soon!")
}

// ChangePassword validates and applies a password change, then
// re-establishes the session. The change advances the account's
// password stamp, so the token issued here is the only one left valid.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var payload ChangePasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.ChangePassword(session.UserID, payload.OldPassword, payload.NewPassword1, payload.NewPassword2)
	if err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("Failed to change password")
		respondServiceError(w, err)
		return
	}

	// Re-verify the new credential before handing out the fresh
	// session, as the original flow re-authenticated after the save.
	user, err = h.accounts.Authenticate(user.Username, payload.NewPassword1)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Re-authentication after password change failed")
		respondServiceError(w, err)
		return
	}

	h.establishSession(w, user)
	h.record("account.password_change", user.ID, "password changed")

	respondMessage(w, http.StatusOK, "Your password successfully changed!")
}

// Activity returns the caller's recent account events.
func (h *AccountHandler) Activity(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	events, err := h.events.RecentForUser(session.UserID, 20)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to load account activity")
		respondError(w, http.StatusInternalServerError, "Failed to load activity")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *AccountHandler) establishSession(w http.ResponseWriter, user models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate session token")
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"
	auth.SetSessionCookie(w, token, h.tokens.TTL(), isProd)
}

func (h *AccountHandler) record(eventType, userID, message string) {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	if err := h.events.Record(eventType, "info", message, uid); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record account event")
	}
}
