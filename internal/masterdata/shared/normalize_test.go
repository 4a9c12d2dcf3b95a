package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProductName(t *testing.T) {
	require.Equal(t, "REMAZOL RED RR", NormalizeProductName("  remazol   red RR "))
	require.Equal(t, "SODA ASH", NormalizeProductName("Soda\tAsh"))
	require.Equal(t, "", NormalizeProductName("   "))
}

func TestNormalizeDesignCode(t *testing.T) {
	require.Equal(t, "D-104 b", NormalizeDesignCode("  D-104   b "))
}
