package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/export"
)

type drawerRequest struct {
	Date        domain.Date     `json:"date"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	ActualCash  decimal.Decimal `json:"actual_cash"`
	Notes       string          `json:"notes"`
}

func (a *API) handleDrawerState(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := a.service.DrawerState(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) handleOpenDrawer(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.OpenDrawer(r.Context(), req.Date, req.OpeningCash); err != nil {
		writeServiceError(w, r, err)
		return
	}
	a.handleDrawerAfterChange(w, r, req.Date)
}

func (a *API) handleCloseDrawer(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.CloseDrawer(r.Context(), req.Date, req.ActualCash, req.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"close":    result,
		"balanced": result.Balanced(),
	})
}

func (a *API) handleReopenDrawer(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.ReopenDrawer(r.Context(), req.Date); err != nil {
		writeServiceError(w, r, err)
		return
	}
	a.handleDrawerAfterChange(w, r, req.Date)
}

func (a *API) handleDrawerAfterChange(w http.ResponseWriter, r *http.Request, date domain.Date) {
	state, err := a.service.DrawerState(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) handleCloseSheet(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := a.service.DrawerState(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	daily, err := a.service.DailySales(r.Context(), state.Date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.CloseSheet(&buf, a.opts.ShopName, state, daily); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"close-%s.pdf\"", state.Date))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := a.service.Credits(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credits": credits})
}

func (a *API) handlePendingCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := a.service.PendingCredits(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	total := decimal.Zero
	for _, c := range credits {
		total = total.Add(c.Balance())
	}
	writeJSON(w, http.StatusOK, map[string]any{"credits": credits, "outstanding": total})
}

func (a *API) handleGetCredit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	credit, err := a.service.GetCredit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credit": credit})
}

func (a *API) handlePayCreditPartial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payment, err := a.service.PayCreditPartial(r.Context(), id, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (a *API) handlePayCreditFull(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		PaymentDate *domain.Date `json:"payment_date,omitempty"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := a.service.PayCreditFull(r.Context(), id, req.PaymentDate); err != nil {
		writeServiceError(w, r, err)
		return
	}
	credit, err := a.service.GetCredit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credit": credit})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	orders, err := a.service.Orders(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (a *API) handleSupplierDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := a.service.SupplierDebt(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
}

func (a *API) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := a.service.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleEditOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.OrderEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.EditOrder(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.OrderPayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	expenseID, err := a.service.PayOrder(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "expense_id": expenseID})
}

func (a *API) handleReceiveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.OrderReceiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.ReceiveOrder(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleListFixedCosts(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid active flag"))
			return
		}
		activeOnly = v
	}
	costs, err := a.service.ListFixedCosts(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	total := decimal.Zero
	for _, c := range costs {
		if c.IsActive {
			total = total.Add(c.MonthlyAmount)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fixed_costs": costs, "active_total": total})
}

func (a *API) handleCreateFixedCost(w http.ResponseWriter, r *http.Request) {
	var req domain.FixedCostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := a.service.CreateFixedCost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (a *API) handleUpdateFixedCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.FixedCostUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.UpdateFixedCost(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteFixedCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.DeleteFixedCost(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportLedger downloads sales and expenses for from..to as XLSX,
// defaulting to the current month.
func (a *API) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if from.IsZero() {
		from = a.service.Today().MonthStart()
	}
	if to.IsZero() {
		to = a.service.Today()
	}

	sales, err := a.service.SalesRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	expenses, err := a.service.ExpensesRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, sales.Sales, expenses.Expenses); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger-%s-%s.xlsx\"", from, to))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
