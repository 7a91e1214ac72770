package httpapi

import (
	"net/http"

	"orvann/backend/internal/domain"
)

func (a *API) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := a.service.RecordSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleEditSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.SaleEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.EditSale(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleVoidSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	voided, err := a.service.VoidSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voided": voided})
}

func (a *API) handleDailySales(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.service.DailySales(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleMonthlySales(w http.ResponseWriter, r *http.Request) {
	year, month, err := a.queryMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.service.MonthlySales(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleWeeklySales(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.WeeklySales(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handlePreviousWeekSales(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.PreviousWeekSales(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleSalesRange(w http.ResponseWriter, r *http.Request) {
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
	report, err := a.service.SalesRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	year, month, err := a.queryMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	series, err := a.service.DailySeries(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (a *API) handleSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := a.service.PartnerSettlement(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (a *API) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	be, err := a.service.BreakEven(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"break_even":       be,
		"display_progress": be.DisplayProgress(),
	})
}

func (a *API) handleInventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.InventorySummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
