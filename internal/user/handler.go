package user

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ParkSmart/ParkSmart/internal/common/auth"
	"github.com/ParkSmart/ParkSmart/internal/common/config"
	commonserver "github.com/ParkSmart/ParkSmart/internal/common/server"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler serves account registration, login and profile.
type Handler struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewHandler(db *gorm.DB, authCfg config.AuthConfig) *Handler {
	return &Handler{
		repo:    NewRepo(db),
		authCfg: authCfg,
	}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/api/register", h.Register)
	r.Post("/api/login", h.Login)
	r.Get("/api/profile", h.Profile)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		commonserver.WriteError(w, http.StatusBadRequest, "username/email/password required")
		return
	}

	// Duplicate username and duplicate email are reported separately.
	if _, err := h.repo.FindByUsername(r.Context(), username); err == nil {
		commonserver.WriteError(w, http.StatusConflict, "Username already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.repo.FindByEmail(r.Context(), email); err == nil {
		commonserver.WriteError(w, http.StatusConflict, "Email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	hash, err := HashPassword(req.Password, salt)
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := h.repo.Create(r.Context(), u); err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	commonserver.WriteSuccess(w, "Registration successful! Please log in.", map[string]any{
		"user_id": u.ID,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		commonserver.WriteError(w, http.StatusBadRequest, "username/password required")
		return
	}

	u, err := h.repo.FindByUsername(r.Context(), username)
	if err == gorm.ErrRecordNotFound {
		commonserver.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !VerifyPassword(req.Password, u.PasswordSalt, u.PasswordHash) {
		commonserver.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	ttl := time.Duration(h.authCfg.TokenTTLMin) * time.Minute
	token, exp, err := auth.GenerateAccessToken(h.authCfg, u.ID, []string{"user"}, ttl)
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	commonserver.WriteSuccess(w, "", map[string]any{
		"access_token": token,
		"expires_at":   exp.Unix(),
		"user": map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		},
	})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}
	u, err := h.repo.FindByID(r.Context(), ai.Subject)
	if err == gorm.ErrRecordNotFound {
		commonserver.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	commonserver.WriteJSON(w, http.StatusOK, map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"created_at": u.CreatedAt.Unix(),
	})
}
