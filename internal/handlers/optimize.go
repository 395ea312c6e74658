package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"slices"
	"sort"

	"ttconnect/db"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// ImpactMetrics are the reported effects of an optimization run. They are
// random values in fixed ranges, not derived from the substitution performed;
// the numbers are presentation material, not measurements.
type ImpactMetrics struct {
	CarbonReduction     int `json:"carbon_reduction"`
	CostSavings         int `json:"cost_savings"`
	LeadTimeImprovement int `json:"lead_time_improvement"`
}

func randomImpactMetrics() ImpactMetrics {
	return ImpactMetrics{
		CarbonReduction:     rand.Intn(50) + 10,
		CostSavings:         rand.Intn(30) + 5,
		LeadTimeImprovement: rand.Intn(20) + 5,
	}
}

// replacementCount maps the optimization level to how many chain slots get
// substituted. Never more than the chain holds.
func replacementCount(optimizationType string, chainLen int) int {
	var count int
	switch optimizationType {
	case "simple":
		count = 1
	case "medium":
		count = (chainLen + 2) / 3
	case "max":
		count = (chainLen + 1) / 2
	}
	if count > chainLen {
		count = chainLen
	}
	return count
}

// selectReplacements picks candidates for substitution: opted-in suppliers
// not already in the chain, lowest risk first.
func selectReplacements(suppliers []db.Supplier, brandID string, currentChain []string, count int) []db.Supplier {
	candidates := []db.Supplier{}
	for _, sup := range suppliers {
		if slices.Contains(sup.OptedInBrands, brandID) && !slices.Contains(currentChain, sup.ID) {
			candidates = append(candidates, sup)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].RiskScore < candidates[j].RiskScore
	})
	if count > len(candidates) {
		count = len(candidates)
	}
	return candidates[:count]
}

// applyReplacements overwrites the tail of the chain with the replacement
// suppliers, leaving the head untouched.
func applyReplacements(currentChain []string, replacements []db.Supplier) []string {
	optimized := slices.Clone(currentChain)
	for i, rep := range replacements {
		idx := len(optimized) - 1 - i
		if idx < 0 {
			break
		}
		optimized[idx] = rep.ID
	}
	return optimized
}

// OptimizeHandler handles POST /api/optimize (brand only). This is not a real
// optimizer: it substitutes a fixed-size slice of the stored supplier list
// and fabricates the impact numbers.
func (h *Handler) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ChainID          string `json:"chainId"`
		OptimizationType string `json:"optimizationType"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if input.ChainID == "" || input.OptimizationType == "" {
		writeError(w, http.StatusBadRequest, "Chain ID and optimization type are required")
		return
	}
	switch input.OptimizationType {
	case "simple", "medium", "max":
	default:
		writeError(w, http.StatusBadRequest, `Optimization type must be "simple", "medium", or "max"`)
		return
	}

	_, brandID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	chain, err := h.Store.GetSupplyChainRoute(r.Context(), input.ChainID, brandID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Supply chain not found or not accessible")
		return
	}

	suppliers, err := h.Store.GetSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch suppliers")
		return
	}

	currentChain := []string(chain.Suppliers)
	count := replacementCount(input.OptimizationType, len(currentChain))
	replacements := selectReplacements(suppliers, brandID, currentChain, count)
	optimizedChain := applyReplacements(currentChain, replacements)

	optimized := &db.SupplyChainRoute{
		BrandID:   brandID,
		ChainID:   chain.ChainID + "_optimized",
		Suppliers: pq.StringArray(optimizedChain),
	}
	if err := h.Store.CreateSupplyChainRoute(r.Context(), optimized); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create optimized supply chain")
		return
	}

	metrics := randomImpactMetrics()

	result := &db.OptimizationResult{
		Type:          input.OptimizationType,
		BeforeChain:   mustJSON(chain),
		AfterChain:    mustJSON(optimized),
		ImpactMetrics: mustJSON(metrics),
	}
	// Recording the snapshot is best-effort; the optimized route already exists.
	_ = h.Store.CreateOptimizationResult(r.Context(), result)

	details := h.supplierDetailsMap(r, append(slices.Clone(currentChain), optimizedChain...))

	replacementSuggestions := make([]map[string]interface{}, 0, len(replacements))
	for _, rep := range replacements {
		replacementSuggestions = append(replacementSuggestions, supplierDetail(rep))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"optimization": map[string]interface{}{
			"id":   result.ID,
			"type": input.OptimizationType,
			"before_chain": map[string]interface{}{
				"id":        chain.ID,
				"chain_id":  chain.ChainID,
				"suppliers": detailList(currentChain, details),
			},
			"after_chain": map[string]interface{}{
				"id":        optimized.ID,
				"chain_id":  optimized.ChainID,
				"suppliers": detailList(optimizedChain, details),
			},
			"impact_metrics":          metrics,
			"replacement_suggestions": replacementSuggestions,
		},
	})
}

// ListSupplyChainsHandler handles GET /api/optimize (brand only): the brand's
// chains that have not been optimized yet, with supplier details attached.
func (h *Handler) ListSupplyChainsHandler(w http.ResponseWriter, r *http.Request) {
	_, brandID, ok := h.resolveEntity(w, r)
	if !ok {
		return
	}

	chains, err := h.Store.GetSupplyChainRoutesForBrand(r.Context(), brandID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch supply chains")
		return
	}

	allIDs := []string{}
	for _, chain := range chains {
		allIDs = append(allIDs, chain.Suppliers...)
	}
	details := h.supplierDetailsMap(r, allIDs)

	type chainWithDetails struct {
		db.SupplyChainRoute
		SupplierDetails []map[string]interface{} `json:"supplier_details"`
	}

	result := make([]chainWithDetails, 0, len(chains))
	for _, chain := range chains {
		result = append(result, chainWithDetails{
			SupplyChainRoute: chain,
			SupplierDetails:  detailList(chain.Suppliers, details),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"supplyChains": result})
}

func (h *Handler) supplierDetailsMap(r *http.Request, ids []string) map[string]map[string]interface{} {
	unique := []string{}
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	details := map[string]map[string]interface{}{}
	suppliers, err := h.Store.GetSuppliersByIDs(r.Context(), unique)
	if err != nil {
		return details
	}
	for _, sup := range suppliers {
		details[sup.ID] = supplierDetail(sup)
	}
	return details
}

func supplierDetail(sup db.Supplier) map[string]interface{} {
	return map[string]interface{}{
		"id":               sup.ID,
		"name":             sup.Name,
		"risk_score":       sup.RiskScore,
		"profile_strength": sup.ProfileStrength,
		"value_processes":  sup.ValueProcesses,
	}
}

func detailList(ids []string, details map[string]map[string]interface{}) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		if d, ok := details[id]; ok {
			list = append(list, d)
			continue
		}
		list = append(list, map[string]interface{}{"id": id, "name": "Unknown Supplier"})
	}
	return list
}

func mustJSON(v interface{}) types.JSONText {
	raw, err := json.Marshal(v)
	if err != nil {
		return types.JSONText("{}")
	}
	return types.JSONText(raw)
}
