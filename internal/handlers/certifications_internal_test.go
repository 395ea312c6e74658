package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveCertificationStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(-1, 0, 0)
	future := now.AddDate(1, 0, 0)

	require.Equal(t, "valid", deriveCertificationStatus(nil, now))
	require.Equal(t, "valid", deriveCertificationStatus(&future, now))
	require.Equal(t, "expired", deriveCertificationStatus(&past, now))
}

func TestParseExpiryDate(t *testing.T) {
	expiry, ok := parseExpiryDate("2030-01-02")
	require.True(t, ok)
	require.Equal(t, time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), *expiry)

	expiry, ok = parseExpiryDate("2030-01-02T15:04:05Z")
	require.True(t, ok)
	require.Equal(t, 15, expiry.Hour())

	expiry, ok = parseExpiryDate("")
	require.True(t, ok)
	require.Nil(t, expiry)

	_, ok = parseExpiryDate("02/01/2030")
	require.False(t, ok)
}
