package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndCompare(t *testing.T) {
	hashed, err := HashPassword("correct horse battery", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.NoError(t, ComparePassword(hashed, "correct horse battery"))
	assert.Error(t, ComparePassword(hashed, "wrong password"))
}

func TestHashPasswordDefaultsCost(t *testing.T) {
	hashed, err := HashPassword("correct horse battery", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
