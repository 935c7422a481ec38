package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := Generate("secreto", "u-1", RoleCajero, "ventas-test", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, RoleCajero, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", "u-1", RoleAdmin, "ventas-test", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := Generate("secreto", "u-1", RoleAdmin, "ventas-test", -1)
	require.NoError(t, err)

	_, _, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "u-1", RoleAdmin, "ventas-test", 5)
	assert.Error(t, err)
}
