package httpapi

import (
	"net/http"

	"orvann/backend/internal/domain"
)

func (a *API) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := a.service.RecordExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (a *API) handleRecordEvenExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.EvenExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ids, err := a.service.RecordEvenExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

func (a *API) handleRecordCustomExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ids, err := a.service.RecordCustomExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

func (a *API) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	expense, err := a.service.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

func (a *API) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req domain.ExpenseEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.EditExpense(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	expense, err := a.service.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.service.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := a.queryMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	summary, err := a.service.MonthlyExpenses(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleExpensesRange(w http.ResponseWriter, r *http.Request) {
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
	summary, err := a.service.ExpensesRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
