package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rmateus/taskman-be/internal/auth"
	"github.com/rmateus/taskman-be/internal/services"
	"github.com/rs/zerolog/log"
)

// sessionCookieMaxAge is client-side hygiene only; the server-side session
// row decides whether a token is still live.
const sessionCookieMaxAge = 7 * 24 * time.Hour

// UserHandler handles HTTP requests for registration, login and profiles.
type UserHandler struct {
	users       services.UserServiceProvider
	sessions    services.SessionServiceProvider
	development bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, sessions services.SessionServiceProvider, development bool) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, development: development}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginPayload defines the structure for login requests. The client may
// identify itself by username or email.
type LoginPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration and signs the user in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	errs := map[string][]string{}
	if payload.Username == "" {
		errs["username"] = append(errs["username"], "this field is required")
	}
	if payload.Email == "" {
		errs["email"] = append(errs["email"], "this field is required")
	}
	if payload.Password == "" {
		errs["password"] = append(errs["password"], "this field is required")
	}
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	user, err := h.users.Register(payload.Username, payload.Email, payload.Password, payload.FirstName, payload.LastName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login authenticates by username or email and rotates the session token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := payload.Username
	if identifier == "" {
		identifier = payload.Email
	}
	if identifier == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	user, err := h.users.Authenticate(identifier, payload.Password)
	if err != nil {
		log.Warn().Str("identifier", identifier).Msg("Failed authentication attempt")
		respondServiceError(w, err)
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout revokes the current session token and clears the cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		if err := h.sessions.Revoke(cookie.Value); err != nil {
			log.Error().Err(err).Msg("Failed to revoke session token")
			respondError(w, http.StatusInternalServerError, "failed to log out")
			return
		}
	}

	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// GetProfile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// UpdateProfile applies a partial profile update, including password rotation.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Password  *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(account.ID, services.ProfileUpdate{
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Password:  payload.Password,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteProfile permanently deletes the account, its tasks and its session.
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.users.DeleteUser(account.ID); err != nil {
		log.Error().Err(err).Str("user_id", account.ID).Msg("Failed to delete user")
		respondServiceError(w, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// setSessionCookie writes the token into the HTTP-only session cookie.
// Secure is on outside development; SameSite is Strict in production and
// Lax in development so same-site tooling keeps working.
func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	sameSite := http.SameSiteStrictMode
	if h.development {
		sameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !h.development,
		SameSite: sameSite,
		Path:     "/",
	})
}

func (h *UserHandler) clearSessionCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteStrictMode
	if h.development {
		sameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.development,
		SameSite: sameSite,
		Path:     "/",
	})
}
