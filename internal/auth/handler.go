package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/pkg/request"
	"github.com/fkhayef/loanbook/pkg/response"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	credentials *Credentials
	jwt         *JWTManager
}

// NewHandler creates a new auth handler
func NewHandler(credentials *Credentials, jwt *JWTManager) *Handler {
	return &Handler{credentials: credentials, jwt: jwt}
}

// Routes returns the router for auth endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	return r
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Exchange the configured username and password for a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=LoginResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	if err := h.credentials.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			slog.Warn("Login rejected", "username", req.Username, "remote", r.RemoteAddr)
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to authenticate")
		return
	}

	token, expiresAt, err := h.jwt.Generate(req.Username)
	if err != nil {
		slog.Error("Failed to issue session token", "error", err)
		response.InternalError(w, "Failed to issue token")
		return
	}

	slog.Info("User logged in", "username", req.Username)
	response.JSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Username:  req.Username,
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Sessions are stateless; the client discards its token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	response.NoContent(w)
}
