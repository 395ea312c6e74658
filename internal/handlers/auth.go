package handlers

import (
	"encoding/json"
	"net/http"

	"ttconnect/db"
	"ttconnect/internal/auth"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// RegisterHandler handles POST /api/auth/register: a paired insert of the
// user and the brand-or-supplier entity they act as.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Name     string `json:"name"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.Email == "" || input.Password == "" || input.Role == "" || input.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if input.Role != "brand" && input.Role != "supplier" {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	if _, err := h.Store.GetUserByEmail(r.Context(), input.Email); err == nil {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &db.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}

	summary := map[string]interface{}{}
	if input.Role == "brand" {
		brand := &db.Brand{Name: input.Name}
		if err := h.Store.RegisterBrandUser(r.Context(), user, brand); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
		summary["brandId"] = brand.ID
	} else {
		contact, _ := json.Marshal(map[string]string{"email": input.Email})
		supplier := &db.Supplier{
			Name:           input.Name,
			Contact:        types.JSONText(contact),
			Certifications: pq.StringArray{},
			Materials:      pq.StringArray{},
			ValueProcesses: pq.StringArray{},
			Facilities:     types.JSONText("[]"),
			OptedInBrands:  pq.StringArray{},
		}
		if err := h.Store.RegisterSupplierUser(r.Context(), user, supplier); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
		summary["supplierId"] = supplier.ID
	}

	summary["id"] = user.ID
	summary["email"] = user.Email
	summary["role"] = user.Role

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    summary,
	})
}

// LoginHandler handles POST /api/auth/login. Unknown email and wrong password
// answer identically so the response does not leak which one was wrong.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.Email == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), input.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.Auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	summary := map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	}
	h.attachEntityDetails(r, user, summary)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  summary,
	})
}

// MeHandler handles GET /api/auth/me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	user, err := h.Store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, claims.Role+" not found")
		return
	}

	summary := map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	}
	h.attachEntityDetails(r, user, summary)

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": summary})
}

// attachEntityDetails adds the linked brand or supplier summary to a user
// payload, matching the role-specific keys the frontend expects.
func (h *Handler) attachEntityDetails(r *http.Request, user *db.User, summary map[string]interface{}) {
	switch {
	case user.Role == "brand" && user.LinkedBrandID != nil:
		summary["brandId"] = *user.LinkedBrandID
		if brand, err := h.Store.GetBrand(r.Context(), *user.LinkedBrandID); err == nil {
			summary["brandDetails"] = map[string]interface{}{
				"id":   brand.ID,
				"name": brand.Name,
				"logo": brand.Logo,
			}
		}
	case user.Role == "supplier" && user.LinkedSupplierID != nil:
		summary["supplierId"] = *user.LinkedSupplierID
		if supplier, err := h.Store.GetSupplier(r.Context(), *user.LinkedSupplierID); err == nil {
			summary["supplierDetails"] = map[string]interface{}{
				"id":               supplier.ID,
				"name":             supplier.Name,
				"profile_strength": supplier.ProfileStrength,
				"risk_score":       supplier.RiskScore,
			}
		}
	}
}
