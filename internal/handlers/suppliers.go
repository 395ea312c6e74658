package handlers

import (
	"net/http"
)

// BrandSuppliersHandler handles GET /api/brand/suppliers (brand only): the
// suppliers the brand is connected with, reached through its workspaces.
func (h *Handler) BrandSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	_, brandID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	workspaces, err := h.Store.GetWorkspacesForBrand(r.Context(), brandID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch supplier connections")
		return
	}

	supplierIDs := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		supplierIDs = append(supplierIDs, ws.SupplierID)
	}

	suppliers, err := h.Store.GetSuppliersByIDs(r.Context(), supplierIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch supplier details")
		return
	}

	summaries := []supplierSummary{}
	for _, sup := range suppliers {
		summaries = append(summaries, summarizeSupplier(sup))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suppliers": summaries})
}
