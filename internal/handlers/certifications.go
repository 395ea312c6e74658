package handlers

import (
	"net/http"
	"slices"
	"time"

	"ttconnect/db"
)

// deriveCertificationStatus fixes the status once at upload time from the
// expiry date; it is never re-evaluated afterwards.
func deriveCertificationStatus(expiry *time.Time, now time.Time) string {
	if expiry != nil && expiry.Before(now) {
		return "expired"
	}
	return "valid"
}

func parseExpiryDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// UploadCertificationHandler handles POST /api/certifications (supplier
// only). The file itself lives in external blob storage; the request carries
// its URL. The certification name is also mirrored into the supplier's
// certifications array for marketplace filtering.
func (h *Handler) UploadCertificationHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name       string `json:"name"`
		File       string `json:"file"`
		ExpiryDate string `json:"expiry_date"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.Name == "" || input.File == "" {
		writeError(w, http.StatusBadRequest, "Name and file are required")
		return
	}

	expiry, ok := parseExpiryDate(input.ExpiryDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid expiry date")
		return
	}

	_, supplierID, resolved := h.resolveEntity(w, r)
	if !resolved {
		return
	}

	cert := &db.Certification{
		SupplierID:   supplierID,
		Name:         input.Name,
		Status:       deriveCertificationStatus(expiry, time.Now()),
		UploadedFile: input.File,
		ExpiryDate:   expiry,
	}
	if err := h.Store.CreateCertification(r.Context(), cert); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create certification record")
		return
	}

	if supplier, err := h.Store.GetSupplier(r.Context(), supplierID); err == nil {
		if !slices.Contains(supplier.Certifications, cert.Name) {
			updated := append(slices.Clone([]string(supplier.Certifications)), cert.Name)
			// Best effort: the certification record is the source of truth.
			_ = h.Store.UpdateSupplierCertifications(r.Context(), supplierID, updated)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Certification uploaded successfully",
		"certification": cert,
	})
}

// ListCertificationsHandler handles GET /api/certifications. Suppliers see
// their own; a brand passes ?supplier_id= and must be opted in to or
// connected with that supplier.
func (h *Handler) ListCertificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims, entityID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	supplierID := entityID
	if claims.Role == "brand" {
		supplierID = r.URL.Query().Get("supplier_id")
		if supplierID == "" {
			writeError(w, http.StatusBadRequest, "Supplier ID is required")
			return
		}

		supplier, err := h.Store.GetSupplier(r.Context(), supplierID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Supplier not found")
			return
		}

		optedIn := slices.Contains(supplier.OptedInBrands, entityID)
		connected := false
		if _, err := h.Store.GetWorkspaceByPair(r.Context(), entityID, supplierID); err == nil {
			connected = true
		}
		if !optedIn && !connected {
			writeError(w, http.StatusForbidden, "Unauthorized to view this supplier's certifications")
			return
		}
	}

	certifications, err := h.Store.GetSupplierCertifications(r.Context(), supplierID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch certifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"certifications": certifications})
}
