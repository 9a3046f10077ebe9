package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"notes-server/internal/domain"
	"notes-server/internal/service"
	"notes-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID, err := h.authService.Signup(&req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			response.BadRequest(w, "Username already registered")
			return
		}
		response.InternalError(w, "Failed to create user")
		return
	}

	response.Created(w, domain.SignupResponse{UserID: userID})
}

// Login consumes form-encoded credentials (the OAuth2 password-form
// shape), unlike signup which takes JSON.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.authService.Login(username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.Success(w, domain.LoginResponse{AccessToken: token})
}
