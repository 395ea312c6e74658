package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ttconnect/db"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func optedInSupplier(id string) db.Supplier {
	return db.Supplier{
		ID:            id,
		OptedInBrands: pq.StringArray{"brand-1"},
	}
}

func TestMatchesMarketplaceFilterOptIn(t *testing.T) {
	sup := optedInSupplier("s1")
	require.True(t, matchesMarketplaceFilter(sup, "brand-1", MarketplaceFilter{MaxRiskScore: 100}))
	require.False(t, matchesMarketplaceFilter(sup, "brand-2", MarketplaceFilter{MaxRiskScore: 100}))
}

func TestMatchesMarketplaceFilterAllOfSemantics(t *testing.T) {
	sup := optedInSupplier("s1")
	sup.Certifications = pq.StringArray{"GOTS"}

	one := MarketplaceFilter{Certifications: []string{"GOTS"}, MaxRiskScore: 100}
	both := MarketplaceFilter{Certifications: []string{"GOTS", "GRS"}, MaxRiskScore: 100}
	require.True(t, matchesMarketplaceFilter(sup, "brand-1", one))
	require.False(t, matchesMarketplaceFilter(sup, "brand-1", both))

	sup.Certifications = pq.StringArray{"GRS", "GOTS", "OEKO-TEX"}
	require.True(t, matchesMarketplaceFilter(sup, "brand-1", both))
}

func TestMatchesMarketplaceFilterBoundsAndExclusion(t *testing.T) {
	sup := optedInSupplier("s1")
	sup.ProfileStrength = 40
	sup.RiskScore = 30

	require.False(t, matchesMarketplaceFilter(sup, "brand-1",
		MarketplaceFilter{MinProfileStrength: 50, MaxRiskScore: 100}))
	require.False(t, matchesMarketplaceFilter(sup, "brand-1",
		MarketplaceFilter{MaxRiskScore: 20}))
	require.False(t, matchesMarketplaceFilter(sup, "brand-1",
		MarketplaceFilter{MaxRiskScore: 100, ExcludeSupplierID: "s1"}))
	require.True(t, matchesMarketplaceFilter(sup, "brand-1",
		MarketplaceFilter{MinProfileStrength: 40, MaxRiskScore: 30}))
}

func TestParseMarketplaceFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/marketplace/suppliers?certifications=GOTS,%20GRS&materials=&min_profile_strength=25&exclude_supplier_id=s9", nil)

	f := parseMarketplaceFilter(r)
	require.Equal(t, []string{"GOTS", "GRS"}, f.Certifications)
	require.Nil(t, f.Materials)
	require.Equal(t, 25, f.MinProfileStrength)
	require.Equal(t, 100, f.MaxRiskScore)
	require.Equal(t, "s9", f.ExcludeSupplierID)
}

func TestContainsAll(t *testing.T) {
	require.True(t, containsAll([]string{"a", "b"}, nil))
	require.True(t, containsAll([]string{"a", "b"}, []string{"b"}))
	require.False(t, containsAll([]string{"a"}, []string{"a", "b"}))
	require.False(t, containsAll(nil, []string{"a"}))
}
