package httptransport

import (
	"net/http"
	"strings"

	invmodels "dealer/internal/inventory/models"
	"dealer/pkg/platform/httputil"
)

type vehicleListResponse struct {
	Vehicles []*invmodels.Vehicle `json:"vehicles"`
}

func (h *Handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := invmodels.ListFilter{
		Brand:       strings.TrimSpace(q.Get("brand")),
		VehicleType: strings.TrimSpace(q.Get("type")),
	}
	var err error
	if raw := q.Get("state"); raw != "" {
		if filter.State, err = invmodels.ParseAvailabilityState(raw); err != nil {
			h.writeError(w, r, "invalid state filter", err)
			return
		}
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		h.writeError(w, r, "invalid limit", err)
		return
	}

	vehicles, err := h.inventory.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "list vehicles failed", err)
		return
	}
	if vehicles == nil {
		vehicles = []*invmodels.Vehicle{}
	}
	httputil.WriteJSON(w, http.StatusOK, vehicleListResponse{Vehicles: vehicles})
}

func (h *Handler) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathVehicleID(r)
	if err != nil {
		h.writeError(w, r, "invalid vehicle id", err)
		return
	}
	v, err := h.inventory.Get(r.Context(), vehicleID)
	if err != nil {
		h.writeError(w, r, "get vehicle failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
