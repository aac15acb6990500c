package vehicle

import (
	"encoding/json"
	"net/http"
	"strings"

	commonserver "github.com/ParkSmart/ParkSmart/internal/common/server"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handler struct {
	repo *Repo
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{repo: NewRepo(db)}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/api/vehicles", h.AddVehicle)
	r.Get("/api/vehicles", h.ListVehicles)
}

type addVehicleRequest struct {
	LicensePlate string `json:"license_plate"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Color        string `json:"color"`
}

func (h *Handler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	var req addVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plate := strings.TrimSpace(req.LicensePlate)
	if plate == "" {
		commonserver.WriteError(w, http.StatusBadRequest, "license_plate required")
		return
	}

	if _, err := h.repo.FindByPlate(r.Context(), plate); err == nil {
		commonserver.WriteError(w, http.StatusConflict, "Vehicle with this license plate already registered")
		return
	} else if err != gorm.ErrRecordNotFound {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	v := &Vehicle{
		ID:           uuid.NewString(),
		LicensePlate: plate,
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		Color:        strings.TrimSpace(req.Color),
		OwnerID:      ai.Subject,
	}
	if err := h.repo.Create(r.Context(), v); err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	commonserver.WriteSuccess(w, "Vehicle added successfully", map[string]any{
		"vehicle_id": v.ID,
	})
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	vehicles, err := h.repo.ListByOwner(r.Context(), ai.Subject)
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(vehicles))
	for i := range vehicles {
		v := vehicles[i]
		out = append(out, map[string]any{
			"id":            v.ID,
			"license_plate": v.LicensePlate,
			"make":          v.Make,
			"model":         v.Model,
			"color":         v.Color,
		})
	}
	commonserver.WriteJSON(w, http.StatusOK, out)
}
