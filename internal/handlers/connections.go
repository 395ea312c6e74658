package handlers

import (
	"errors"
	"net/http"

	"ttconnect/db"
)

// CreateConnectionRequestHandler handles POST /api/connections/request
// (brand only). A pair that already has a request in any state, declined
// included, cannot be re-requested.
func (h *Handler) CreateConnectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SupplierID string `json:"supplierId"`
		Message    string `json:"message"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.SupplierID == "" {
		writeError(w, http.StatusBadRequest, "Supplier ID is required")
		return
	}

	_, brandID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	if _, err := h.Store.GetSupplier(r.Context(), input.SupplierID); err != nil {
		writeError(w, http.StatusNotFound, "Supplier not found")
		return
	}

	if existing, err := h.Store.GetConnectionRequestByPair(r.Context(), brandID, input.SupplierID); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "Connection request already exists",
			"status": existing.Status,
		})
		return
	}

	cr := &db.ConnectionRequest{
		BrandID:        brandID,
		SupplierID:     input.SupplierID,
		InitialMessage: input.Message,
	}
	if err := h.Store.CreateConnectionRequest(r.Context(), cr); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create connection request")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":           "Connection request sent successfully",
		"connectionRequest": cr,
	})
}

// ListConnectionRequestsHandler handles GET /api/connections/request for
// either role, joining in the counterpart's summary.
func (h *Handler) ListConnectionRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims, entityID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	var (
		requests interface{}
		err      error
	)
	if claims.Role == "brand" {
		requests, err = h.Store.GetConnectionRequestsForBrand(r.Context(), entityID)
	} else {
		requests, err = h.Store.GetConnectionRequestsForSupplier(r.Context(), entityID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch connection requests")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"connectionRequests": requests})
}

// RespondConnectionRequestHandler handles POST /api/connections/accept
// (supplier only): the one pending→{accepted,declined} transition. Accepting
// creates the pair's workspace in the same transaction as the status swap.
func (h *Handler) RespondConnectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ConnectionRequestID string `json:"connectionRequestId"`
		Status              string `json:"status"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.ConnectionRequestID == "" || input.Status == "" {
		writeError(w, http.StatusBadRequest, "Connection request ID and status are required")
		return
	}
	if input.Status != "accepted" && input.Status != "declined" {
		writeError(w, http.StatusBadRequest, `Status must be either "accepted" or "declined"`)
		return
	}

	_, supplierID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	cr, err := h.Store.GetConnectionRequestForSupplier(r.Context(), input.ConnectionRequestID, supplierID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Connection request not found or not accessible")
		return
	}
	if cr.Status != "pending" {
		writeError(w, http.StatusBadRequest, "Connection request has already been processed")
		return
	}

	if _, err := h.Store.RespondToConnectionRequest(r.Context(), cr.ID, input.Status); err != nil {
		if errors.Is(err, db.ErrAlreadyProcessed) {
			writeError(w, http.StatusBadRequest, "Connection request has already been processed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update connection request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":             "Connection request " + input.Status,
		"connectionRequestId": cr.ID,
	})
}
