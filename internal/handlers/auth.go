package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cypheruni/learn/internal/database"
	"github.com/cypheruni/learn/internal/middleware"
	"github.com/cypheruni/learn/internal/models"
)

// AuthHandler handles sign-in for the admin panel. Identity is advisory:
// it unlocks the admin UI but catalog mutations are not gated on it.
type AuthHandler struct {
	sessionStore  *database.SessionStore
	googleConfig  *oauth2.Config
	adminDomain   string
	secureCookies bool
	logger        *log.Logger
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackHost       string
	AdminEmailDomain   string
	SecureCookies      bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessionStore *database.SessionStore, cfg AuthConfig, logger *log.Logger) *AuthHandler {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.CallbackHost),
		Scopes:       []string{"profile", "email"},
		Endpoint:     google.Endpoint,
	}

	return &AuthHandler{
		sessionStore:  sessionStore,
		googleConfig:  googleConfig,
		adminDomain:   cfg.AdminEmailDomain,
		secureCookies: cfg.SecureCookies,
		logger:        logger,
	}
}

// GoogleLogin initiates the Google OAuth flow
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessionStore.GenerateSessionID()
	if err != nil {
		h.logger.Printf("Failed to generate state token: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the Google OAuth callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "No code provided")
		return
	}

	token, err := h.googleConfig.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Printf("Failed to exchange code: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to exchange code")
		return
	}

	client := h.googleConfig.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		h.logger.Printf("Failed to get user info: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to get user info")
		return
	}
	defer resp.Body.Close()

	var userInfo struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		h.logger.Printf("Failed to decode user info: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to decode user info")
		return
	}

	user := models.User{
		ID:    userInfo.ID,
		Email: userInfo.Email,
		Name:  userInfo.Name,
		Admin: models.IsAdminEmail(userInfo.Email, h.adminDomain),
	}

	sessionID, err := h.sessionStore.GenerateSessionID()
	if err != nil {
		h.logger.Printf("Failed to generate session ID: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := h.sessionStore.Set(r.Context(), sessionID, user); err != nil {
		h.logger.Printf("Failed to store session: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to store session")
		return
	}

	middleware.SetSessionCookie(w, sessionID, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.sessionStore.Delete(r.Context(), cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me: the current user plus the admin predicate
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
