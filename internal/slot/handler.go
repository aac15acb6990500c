package slot

import (
	"net/http"

	commonserver "github.com/ParkSmart/ParkSmart/internal/common/server"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type Handler struct {
	repo *Repo
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{repo: NewRepo(db)}
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/api/parking-slots", h.ListSlots)
}

// ListSlots returns every slot for the requested location, occupied or not,
// so the floor map can render both states.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = LocationIndoor
	}

	slots, err := h.repo.ListByLocation(r.Context(), location)
	if err != nil {
		commonserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(slots))
	for i := range slots {
		s := slots[i]
		out = append(out, map[string]any{
			"id":          s.ID,
			"slot_number": s.SlotNumber,
			"location":    s.Location,
			"area":        s.Area,
			"is_occupied": s.IsOccupied,
			"coordinates": s.Coordinates,
		})
	}
	commonserver.WriteJSON(w, http.StatusOK, out)
}
