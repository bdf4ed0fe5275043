package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/middleware"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth  *auth.Authenticator
	Audit *Auditor
}

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.Auth.Register(r.Context(), input.Username, input.Email, input.Password, false)
	if err != nil {
		writeError(w, r, err, "username or email")
		return
	}

	h.Audit.Record(r.Context(), user.ID, "create", "user", user.ID, "register")
	writeJSON(w, http.StatusCreated, user)
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ==========================
// Token (form-encoded username and password)
// ==========================
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err, "")
			return
		}
		JSONError(w, "invalid form body", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		fields := map[string]string{}
		if username == "" {
			fields["username"] = "required"
		}
		if password == "" {
			fields["password"] = "required"
		}
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), username, password)
	if errors.Is(err, auth.ErrUnauthenticated) {
		middleware.Unauthorized(w, "incorrect username or password")
		return
	}
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	token, _, err := h.Auth.IssueTokenFor(user)
	if err != nil {
		writeError(w, r, err, "token")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.Auth.Tokens().TTL().Seconds()),
	})
}
