package httptransport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a non-negative integer", key)
	}
	return n, nil
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a date (YYYY-MM-DD)", key)
	}
	return t, nil
}

func pathSaleID(r *http.Request) (id.SaleID, error) {
	return id.ParseSaleID(chi.URLParam(r, "id"))
}

func pathClientID(r *http.Request) (id.ClientID, error) {
	return id.ParseClientID(chi.URLParam(r, "id"))
}

func pathVehicleID(r *http.Request) (id.VehicleID, error) {
	return id.ParseVehicleID(chi.URLParam(r, "id"))
}
