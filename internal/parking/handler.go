package parking

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	commonserver "github.com/ParkSmart/ParkSmart/internal/common/server"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the allocation service over HTTP JSON.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/api/parking-entry", h.Entry)
	r.Post("/api/parking-exit", h.Exit)
	r.Post("/api/simulate-license-detection", h.DetectLicense)
	r.Post("/api/nearest-outdoor-slot", h.NearestOutdoorSlot)
	r.Get("/api/parking-records", h.ListRecords)
}

// writeDomainError maps the allocation error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVehicleNotFound),
		errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrRecordNotFound):
		commonserver.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotOccupied),
		errors.Is(err, ErrAlreadyExited):
		commonserver.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoAvailableSlot),
		errors.Is(err, ErrMissingField):
		commonserver.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

type entryRequest struct {
	VehicleID   string `json:"vehicle_id"`
	SlotID      string `json:"slot_id"`
	ParkingType string `json:"parking_type"`
}

func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VehicleID == "" || req.SlotID == "" {
		commonserver.WriteError(w, http.StatusBadRequest, "Missing required data")
		return
	}

	res, err := h.svc.Enter(r.Context(), req.VehicleID, req.SlotID, req.ParkingType, ai.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	msg := fmt.Sprintf("Vehicle %s parked successfully in slot %s",
		res.Vehicle.LicensePlate, res.Slot.SlotNumber)
	commonserver.WriteSuccess(w, msg, map[string]any{
		"record_id": res.Record.ID,
	})
}

type exitRequest struct {
	RecordID string `json:"record_id"`
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	var req exitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecordID == "" {
		commonserver.WriteError(w, http.StatusBadRequest, "Missing record ID")
		return
	}

	res, err := h.svc.Exit(r.Context(), req.RecordID, ai.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	commonserver.WriteSuccess(w, "Vehicle exit processed successfully", map[string]any{
		"duration": res.DurationMinutes,
		"fee":      res.Fee,
	})
}

type detectRequest struct {
	LicensePlate string `json:"license_plate"`
	ParkingType  string `json:"parking_type"`
}

func (h *Handler) DetectLicense(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.DetectAndAssign(r.Context(), req.LicensePlate, req.ParkingType)
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			commonserver.WriteError(w, http.StatusNotFound,
				fmt.Sprintf("Vehicle with license plate %s not found in system", req.LicensePlate))
			return
		}
		writeDomainError(w, err)
		return
	}

	commonserver.WriteSuccess(w, fmt.Sprintf("License plate %s detected", p.Vehicle.LicensePlate), map[string]any{
		"vehicle_id": p.Vehicle.ID,
		"vehicle_info": map[string]any{
			"license_plate": p.Vehicle.LicensePlate,
			"make":          p.Vehicle.Make,
			"model":         p.Vehicle.Model,
			"color":         p.Vehicle.Color,
		},
		"slot_id":     p.Slot.ID,
		"slot_number": p.Slot.SlotNumber,
		"slot_area":   p.Slot.Area,
	})
}

type nearestRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) NearestOutdoorSlot(w http.ResponseWriter, r *http.Request) {
	var req nearestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonserver.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.svc.NearestOutdoor(r.Context(), req.Latitude, req.Longitude)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	commonserver.WriteSuccess(w, "", map[string]any{
		"slot_id":     n.Slot.ID,
		"slot_number": n.Slot.SlotNumber,
		"coordinates": map[string]any{
			"latitude":  n.Latitude,
			"longitude": n.Longitude,
		},
		"distance":       n.DistanceMeters,
		"estimated_time": n.EstimatedMinutes,
	})
}

// ListRecords serves the dashboard and digital-card views: active records
// with ?active=true, otherwise completed history (optionally limited).
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok {
		commonserver.WriteError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	var (
		recs []ParkingRecord
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		recs, err = h.svc.ActiveByOwner(r.Context(), ai.Subject)
	} else {
		limit := 0
		if r.URL.Query().Get("recent") == "true" {
			limit = 5
		}
		recs, err = h.svc.HistoryByOwner(r.Context(), ai.Subject, limit)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(recs))
	for i := range recs {
		rec := recs[i]
		item := map[string]any{
			"id":           rec.ID,
			"vehicle_id":   rec.VehicleID,
			"slot_id":      rec.SlotID,
			"entry_time":   rec.EntryTime.Unix(),
			"parking_type": rec.ParkingType,
			"status":       string(rec.Status),
		}
		if rec.ExitTime != nil {
			item["exit_time"] = rec.ExitTime.Unix()
			item["fee"] = rec.Fee
			if d := rec.DurationMinutes(); d != nil {
				item["duration"] = *d
			}
		}
		out = append(out, item)
	}
	commonserver.WriteJSON(w, http.StatusOK, out)
}
