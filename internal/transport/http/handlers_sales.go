package httptransport

import (
	"net/http"

	salemodels "dealer/internal/sale/models"
	saleservice "dealer/internal/sale/service"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/httputil"
)

type registerSaleRequest struct {
	ClientID               string `json:"client_id"`
	EmployeeID             string `json:"employee_id"`
	PaymentMethodID        string `json:"payment_method_id"`
	VehicleID              string `json:"vehicle_id"`
	Quantity               *int   `json:"quantity,omitempty"`
	SeasonalDiscount       bool   `json:"seasonal_discount"`
	FrequentClientDiscount bool   `json:"frequent_client_discount"`
}

// toCommand parses identifiers at the trust boundary. Quantity defaults to 1.
func (req registerSaleRequest) toCommand() (saleservice.RegisterSaleCommand, error) {
	var cmd saleservice.RegisterSaleCommand
	var err error
	if cmd.ClientID, err = id.ParseClientID(req.ClientID); err != nil {
		return cmd, err
	}
	if cmd.EmployeeID, err = id.ParseEmployeeID(req.EmployeeID); err != nil {
		return cmd, err
	}
	if cmd.PaymentMethodID, err = id.ParsePaymentMethodID(req.PaymentMethodID); err != nil {
		return cmd, err
	}
	if cmd.VehicleID, err = id.ParseVehicleID(req.VehicleID); err != nil {
		return cmd, err
	}
	cmd.Quantity = 1
	if req.Quantity != nil {
		cmd.Quantity = *req.Quantity
	}
	cmd.SeasonalDiscount = req.SeasonalDiscount
	cmd.FrequentClientDiscount = req.FrequentClientDiscount
	return cmd, nil
}

type registerSaleResponse struct {
	SaleID id.SaleID `json:"sale_id"`
}

type cancelSaleResponse struct {
	SaleID id.SaleID         `json:"sale_id"`
	Status salemodels.Status `json:"status"`
}

type saleListResponse struct {
	Sales []*salemodels.Sale `json:"sales"`
}

func (h *Handler) handleRegisterSale(w http.ResponseWriter, r *http.Request) {
	var req registerSaleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "invalid register sale request", err)
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		h.writeError(w, r, "invalid register sale request", err)
		return
	}

	saleID, err := h.sales.RegisterSale(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, "register sale failed", err)
		return
	}
	w.Header().Set("Location", "/sales/"+saleID.String())
	httputil.WriteJSON(w, http.StatusCreated, registerSaleResponse{SaleID: saleID})
}

func (h *Handler) handleCancelSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := pathSaleID(r)
	if err != nil {
		h.writeError(w, r, "invalid sale id", err)
		return
	}
	if err := h.sales.CancelSale(r.Context(), saleID); err != nil {
		h.writeError(w, r, "cancel sale failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cancelSaleResponse{SaleID: saleID, Status: salemodels.StatusCancelled})
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := pathSaleID(r)
	if err != nil {
		h.writeError(w, r, "invalid sale id", err)
		return
	}
	detail, err := h.sales.GetSale(r.Context(), saleID)
	if err != nil {
		h.writeError(w, r, "get sale failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleListClientSales(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathClientID(r)
	if err != nil {
		h.writeError(w, r, "invalid client id", err)
		return
	}
	var status salemodels.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, err = salemodels.ParseStatus(raw); err != nil {
			h.writeError(w, r, "invalid status filter", err)
			return
		}
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "invalid limit", err)
		return
	}

	sales, err := h.sales.ListSalesByClient(r.Context(), clientID, status, limit)
	if err != nil {
		h.writeError(w, r, "list client sales failed", err)
		return
	}
	if sales == nil {
		sales = []*salemodels.Sale{}
	}
	httputil.WriteJSON(w, http.StatusOK, saleListResponse{Sales: sales})
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathClientID(r)
	if err != nil {
		h.writeError(w, r, "invalid client id", err)
		return
	}
	c, err := h.classification.Classify(r.Context(), clientID)
	if err != nil {
		h.writeError(w, r, "classify client failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}
