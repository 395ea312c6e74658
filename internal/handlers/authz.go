package handlers

import (
	"net/http"

	"ttconnect/internal/auth"
)

// Every route reduces authorization to the same two steps: resolve the
// caller's linked business entity from the user row, then compare it against
// the owner column of the target row. The resolution half lives here so the
// resolve-then-compare pattern is written once instead of per route.

// resolveEntity returns the caller's claims and the id of the brand or
// supplier they act as. On failure it writes the response (401 when the
// middleware claims are missing, 404 when the link is null or dangling) and
// returns ok=false.
func (h *Handler) resolveEntity(w http.ResponseWriter, r *http.Request) (*auth.Claims, string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication failed")
		return nil, "", false
	}

	user, err := h.Store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, claims.Role+" not found")
		return nil, "", false
	}

	var linked *string
	if claims.Role == "brand" {
		linked = user.LinkedBrandID
	} else {
		linked = user.LinkedSupplierID
	}
	if linked == nil || *linked == "" {
		writeError(w, http.StatusNotFound, claims.Role+" not found")
		return nil, "", false
	}

	return claims, *linked, true
}

// resolveWorkspace resolves the caller's entity and loads the workspace only
// if the caller owns it; a workspace belonging to someone else is
// indistinguishable from a missing one.
func (h *Handler) resolveWorkspace(w http.ResponseWriter, r *http.Request, workspaceID string) (*auth.Claims, bool) {
	claims, entityID, ok := h.resolveEntity(w, r)
	if !ok {
		return nil, false
	}

	ws, err := h.Store.GetWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Workspace not found or not accessible")
		return nil, false
	}

	owner := ws.SupplierID
	if claims.Role == "brand" {
		owner = ws.BrandID
	}
	if owner != entityID {
		writeError(w, http.StatusNotFound, "Workspace not found or not accessible")
		return nil, false
	}

	return claims, true
}
