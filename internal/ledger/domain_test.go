package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEntryValidate(t *testing.T) {
	base := Entry{
		Date:       time.Now(),
		Ref:        RefPurchasing,
		RefCode:    "PB-001",
		Location:   LocationGudang,
		QuantityIn: 100,
		ProductID:  1,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Ref = "Invoice"
	require.ErrorIs(t, bad.Validate(), ErrInvalidRef)

	bad = base
	bad.Location = "Dock"
	require.ErrorIs(t, bad.Validate(), ErrInvalidLocation)

	bad = base
	bad.QuantityOut = -1
	require.ErrorIs(t, bad.Validate(), ErrInvalidQuantity)
}

func TestRefAndLocationEnums(t *testing.T) {
	for _, r := range []Ref{RefPurchasing, RefStockMovement, RefColorKitchen, RefStockOpname} {
		require.True(t, r.Valid(), string(r))
	}
	for _, l := range []Location{LocationGudang, LocationKitchen, LocationUsage, LocationOpname} {
		require.True(t, l.Valid(), string(l))
	}
	require.False(t, Ref("").Valid())
	require.False(t, Location("").Valid())
}
