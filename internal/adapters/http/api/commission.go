package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adorzia/atelier/internal/domain/commission"
)

// commissionRequest keeps the optional fields as pointers so a missing value
// is told apart from zero. Only a missing sale_quantity defaults to one unit.
type commissionRequest struct {
	DesignerID     string   `json:"designer_id"`
	ProductionCost *float64 `json:"production_cost"`
	ProductID      string   `json:"product_id"`
	SaleQuantity   *int     `json:"sale_quantity"`
}

func (c commissionRequest) toRequest() (commission.Request, error) {
	switch {
	case strings.TrimSpace(c.DesignerID) == "":
		return commission.Request{}, errors.New("designer_id is required")
	case c.ProductionCost == nil:
		return commission.Request{}, errors.New("production_cost is required")
	}
	qty := 1
	if c.SaleQuantity != nil {
		qty = *c.SaleQuantity
	}
	return commission.Request{
		DesignerID:     c.DesignerID,
		ProductID:      c.ProductID,
		ProductionCost: *c.ProductionCost,
		Quantity:       qty,
	}, nil
}

type commissionResponse struct {
	Success bool `json:"success"`
	commission.Result
	SaleID    string `json:"sale_id"`
	EarningID string `json:"earning_id"`
}

type commissionError struct {
	Error string `json:"error"`
}

// CommissionHandler handles sale commission requests.
type CommissionHandler struct {
	deps CommissionDependencies
}

// NewCommissionHandler creates a new commission handler.
func NewCommissionHandler(deps CommissionDependencies) *CommissionHandler {
	return &CommissionHandler{deps: deps}
}

// HandleCalculate handles POST /commission. Every failure, including invalid
// input, is answered with 500 and an {error} body.
func (h *CommissionHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate_commission"
	var body commissionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusInternalServerError, commissionError{Error: publicMessage(err)})
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, commissionError{Error: err.Error()})
		return
	}

	sale, err := h.deps.CalculateCommission(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, commissionError{Error: publicMessage(Wrap(op, err))})
		return
	}
	writeJSON(w, http.StatusOK, commissionResponse{
		Success:   true,
		Result:    sale.Result,
		SaleID:    sale.SaleID,
		EarningID: sale.EarningID,
	})
}
