package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/cms-be/internal/auth"
	"github.com/isdelr/cms-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for registration, login and profiles.
type UserHandler struct {
	service       services.UserServiceProvider
	tokens        *auth.TokenManager
	secureCookies bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenManager, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, secureCookies: secureCookies}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeServiceError(w, err, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered",
		"user":    user,
	})
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		if statusFor(err) == http.StatusInternalServerError {
			writeServiceError(w, err, "Failed to authenticate")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetProfile retrieves the currently authenticated user from the token.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found")
		writeServiceError(w, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AddAvatar registers a new avatar image for the authenticated user.
func (h *UserHandler) AddAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	var payload struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	avatar, err := h.service.AddAvatar(r.Context(), claims.UserID, payload.URL)
	if err != nil {
		writeServiceError(w, err, "Failed to add avatar")
		return
	}
	writeJSON(w, http.StatusCreated, avatar)
}

// SetActiveAvatar selects which of the user's avatars is shown.
func (h *UserHandler) SetActiveAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	avatarID := chi.URLParam(r, "avatarId")

	if err := h.service.SetActiveAvatar(r.Context(), claims.UserID, avatarID); err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("avatar_id", avatarID).Msg("Failed to set active avatar")
		switch statusFor(err) {
		case http.StatusBadRequest:
			writeError(w, http.StatusBadRequest, "Missing avatarId")
		case http.StatusNotFound:
			writeError(w, http.StatusNotFound, "Avatar not found")
		default:
			writeServiceError(w, err, "Failed to set active avatar")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Active avatar set", "avatarId": avatarID})
}
