package httptransport

import (
	"net/http"
	"strings"
	"time"

	reportmodels "dealer/internal/reports/models"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/httputil"
	"dealer/pkg/requestcontext"
)

type historyResponse struct {
	Entries []reportmodels.HistoryEntry `json:"entries"`
}

type availabilityResponse struct {
	Rows []reportmodels.AvailabilityRow `json:"rows"`
}

type topBrandsResponse struct {
	Year   int                         `json:"year"`
	Brands []reportmodels.BrandRanking `json:"brands"`
}

type monthlyBrandSalesResponse struct {
	Year int                              `json:"year"`
	Rows []reportmodels.MonthlyBrandSales `json:"rows"`
}

func (h *Handler) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathClientID(r)
	if err != nil {
		h.writeError(w, r, "invalid client id", err)
		return
	}
	entries, err := h.reports.ClientHistory(r.Context(), clientID)
	if err != nil {
		h.writeError(w, r, "client history failed", err)
		return
	}
	if entries == nil {
		entries = []reportmodels.HistoryEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reportmodels.AvailabilityFilter{
		Brand:       strings.TrimSpace(q.Get("brand")),
		VehicleType: strings.TrimSpace(q.Get("type")),
	}
	var err error
	if filter.IntakeFrom, err = queryDate(r, "from"); err != nil {
		h.writeError(w, r, "invalid availability filter", err)
		return
	}
	if filter.IntakeTo, err = queryDate(r, "to"); err != nil {
		h.writeError(w, r, "invalid availability filter", err)
		return
	}

	rows, err := h.reports.Availability(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "availability report failed", err)
		return
	}
	if rows == nil {
		rows = []reportmodels.AvailabilityRow{}
	}
	httputil.WriteJSON(w, http.StatusOK, availabilityResponse{Rows: rows})
}

func (h *Handler) handleTopBrands(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", requestcontext.Now(r.Context()).Year())
	if err != nil {
		h.writeError(w, r, "invalid year", err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "invalid limit", err)
		return
	}

	brands, err := h.reports.TopBrands(r.Context(), year, limit)
	if err != nil {
		h.writeError(w, r, "top brands report failed", err)
		return
	}
	if brands == nil {
		brands = []reportmodels.BrandRanking{}
	}
	httputil.WriteJSON(w, http.StatusOK, topBrandsResponse{Year: year, Brands: brands})
}

func (h *Handler) handleMonthlyBrandSales(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", requestcontext.Now(r.Context()).Year())
	if err != nil {
		h.writeError(w, r, "invalid year", err)
		return
	}
	rows, err := h.reports.SalesByMonthAndBrand(r.Context(), year)
	if err != nil {
		h.writeError(w, r, "monthly brand sales report failed", err)
		return
	}
	if rows == nil {
		rows = []reportmodels.MonthlyBrandSales{}
	}
	httputil.WriteJSON(w, http.StatusOK, monthlyBrandSalesResponse{Year: year, Rows: rows})
}

// handleMonthSummary accepts ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	at := requestcontext.Now(r.Context())
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			h.writeError(w, r, "invalid month", dErrors.New(dErrors.CodeInvalidInput, "month must be YYYY-MM"))
			return
		}
		at = parsed
	}
	summary, err := h.reports.MonthSummary(r.Context(), at)
	if err != nil {
		h.writeError(w, r, "sales summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleAgingStock(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		h.writeError(w, r, "invalid days", err)
		return
	}
	aging, err := h.reports.AgingStock(r.Context(), days)
	if err != nil {
		h.writeError(w, r, "aging stock report failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, aging)
}
