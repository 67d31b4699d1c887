package handler

import (
	"net/http"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type userResponse struct {
	User model.User `json:"user"`
}

// Auth handles registration, login and the current user endpoint.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, contextManager: contextManager, logger: logger}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("Auth handler: processing registration request", "name", req.Name)

	token, user, err := h.authService.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("Auth handler: processing login request", "name", req.Name)

	token, user, err := h.authService.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	user, err := h.authService.Me(r.Context(), identity.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}
