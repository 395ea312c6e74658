package handlers

import (
	"net/http"
	"slices"
)

// OptInHandler handles POST /api/brands/opt-in (supplier only): add or remove
// a brand from the supplier's visibility list. Both directions are
// idempotent.
func (h *Handler) OptInHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		BrandID string `json:"brandId"`
		Opt     *bool  `json:"opt"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.BrandID == "" || input.Opt == nil {
		writeError(w, http.StatusBadRequest, "Brand ID and opt status are required")
		return
	}

	_, supplierID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	if _, err := h.Store.GetBrand(r.Context(), input.BrandID); err != nil {
		writeError(w, http.StatusNotFound, "Brand not found")
		return
	}

	supplier, err := h.Store.GetSupplier(r.Context(), supplierID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch supplier data")
		return
	}

	optedIn := slices.Clone([]string(supplier.OptedInBrands))
	if *input.Opt {
		if !slices.Contains(optedIn, input.BrandID) {
			optedIn = append(optedIn, input.BrandID)
		}
	} else {
		optedIn = slices.DeleteFunc(optedIn, func(id string) bool { return id == input.BrandID })
	}

	if err := h.Store.UpdateSupplierOptedInBrands(r.Context(), supplierID, optedIn); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update opted-in brands")
		return
	}

	msg := "Successfully opted out of brand"
	if *input.Opt {
		msg = "Successfully opted in to brand"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       msg,
		"brandId":       input.BrandID,
		"optedInBrands": optedIn,
	})
}

// ListOptInBrandsHandler handles GET /api/brands/opt-in (supplier only): all
// brands, each flagged with the supplier's current opt-in state.
func (h *Handler) ListOptInBrandsHandler(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	supplier, err := h.Store.GetSupplier(r.Context(), supplierID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch supplier data")
		return
	}

	brands, err := h.Store.GetBrands(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch brands")
		return
	}

	type brandWithOptStatus struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Logo    string `json:"logo"`
		OptedIn bool   `json:"opted_in"`
	}

	result := make([]brandWithOptStatus, 0, len(brands))
	for _, b := range brands {
		result = append(result, brandWithOptStatus{
			ID:      b.ID,
			Name:    b.Name,
			Logo:    b.Logo,
			OptedIn: slices.Contains(supplier.OptedInBrands, b.ID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"brands": result})
}
