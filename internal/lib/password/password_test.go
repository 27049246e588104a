package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	Cost = bcrypt.MinCost

	hash, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, Compare(hash, "s3cret"))
	assert.ErrorIs(t, Compare(hash, "wrong"), ErrMismatch)
}

func TestCompareMalformedHash(t *testing.T) {
	err := Compare("not-a-hash", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

func TestHashRejectsOverlongInput(t *testing.T) {
	Cost = bcrypt.MinCost

	_, err := Hash(strings.Repeat("😀", 19))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = Hash(strings.Repeat("a", MaxBytes))
	assert.NoError(t, err)
}
