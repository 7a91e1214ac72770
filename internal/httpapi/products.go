package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/export"
)

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), chi.URLParam(r, "sku"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteProduct(r.Context(), chi.URLParam(r, "sku")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sku := chi.URLParam(r, "sku")
	if err := a.service.AddStock(r.Context(), sku, req.Quantity); err != nil {
		writeServiceError(w, r, err)
		return
	}
	product, err := a.service.GetProduct(r.Context(), sku)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

// handleImportProducts accepts either a JSON array of products or a
// multipart upload with an XLSX catalog in the "file" field.
func (a *API) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	var (
		reqs      []domain.ProductCreateRequest
		rowErrors map[string]string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("missing file field"))
			return
		}
		defer file.Close()

		reqs, rowErrors, err = export.ReadProducts(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	} else if err := decodeJSON(r, &reqs); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := a.service.ImportProducts(r.Context(), reqs)
	for row, reason := range rowErrors {
		result.Skipped[row] = reason
	}
	writeJSON(w, http.StatusOK, result)
}
