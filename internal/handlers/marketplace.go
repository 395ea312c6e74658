package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"ttconnect/db"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// MarketplaceFilter carries the query parameters of the marketplace search.
// List filters use ALL-of semantics: a supplier matches only when it holds
// every requested value, not just one of them.
type MarketplaceFilter struct {
	Certifications     []string
	Materials          []string
	ValueProcesses     []string
	MinProfileStrength int
	MaxRiskScore       int
	ExcludeSupplierID  string
}

func parseMarketplaceFilter(r *http.Request) MarketplaceFilter {
	q := r.URL.Query()
	f := MarketplaceFilter{
		Certifications:     splitParam(q.Get("certifications")),
		Materials:          splitParam(q.Get("materials")),
		ValueProcesses:     splitParam(q.Get("value_processes")),
		MinProfileStrength: 0,
		MaxRiskScore:       100,
		ExcludeSupplierID:  q.Get("exclude_supplier_id"),
	}
	if v, err := strconv.Atoi(q.Get("min_profile_strength")); err == nil {
		f.MinProfileStrength = v
	}
	if v, err := strconv.Atoi(q.Get("max_risk_score")); err == nil {
		f.MaxRiskScore = v
	}
	return f
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// matchesMarketplaceFilter decides supplier visibility for one brand: the
// supplier must have opted in to the brand and satisfy every provided filter.
func matchesMarketplaceFilter(sup db.Supplier, brandID string, f MarketplaceFilter) bool {
	if !slices.Contains(sup.OptedInBrands, brandID) {
		return false
	}
	if f.ExcludeSupplierID != "" && sup.ID == f.ExcludeSupplierID {
		return false
	}
	if sup.ProfileStrength < f.MinProfileStrength {
		return false
	}
	if sup.RiskScore > f.MaxRiskScore {
		return false
	}
	return containsAll(sup.Certifications, f.Certifications) &&
		containsAll(sup.Materials, f.Materials) &&
		containsAll(sup.ValueProcesses, f.ValueProcesses)
}

func containsAll(have []string, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

// supplierSummary is the supplier shape exposed to brands; it omits the
// opted_in_brands column so one brand cannot see a supplier's other opt-ins.
type supplierSummary struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Address         string         `json:"address"`
	Contact         types.JSONText `json:"contact"`
	Certifications  pq.StringArray `json:"certifications"`
	Materials       pq.StringArray `json:"materials"`
	ValueProcesses  pq.StringArray `json:"value_processes"`
	RiskScore       int            `json:"risk_score"`
	ProfileStrength int            `json:"profile_strength"`
}

func summarizeSupplier(sup db.Supplier) supplierSummary {
	return supplierSummary{
		ID:              sup.ID,
		Name:            sup.Name,
		Address:         sup.Address,
		Contact:         sup.Contact,
		Certifications:  sup.Certifications,
		Materials:       sup.Materials,
		ValueProcesses:  sup.ValueProcesses,
		RiskScore:       sup.RiskScore,
		ProfileStrength: sup.ProfileStrength,
	}
}

// MarketplaceSuppliersHandler handles GET /api/marketplace/suppliers (brand
// only). No pagination; sorting is caller-side.
func (h *Handler) MarketplaceSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	_, brandID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	filter := parseMarketplaceFilter(r)

	suppliers, err := h.Store.GetSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch suppliers")
		return
	}

	matched := []supplierSummary{}
	for _, sup := range suppliers {
		if matchesMarketplaceFilter(sup, brandID, filter) {
			matched = append(matched, summarizeSupplier(sup))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suppliers": matched})
}
