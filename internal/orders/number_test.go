package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	at := time.Date(2025, 4, 10, 9, 30, 15, 0, time.UTC)

	number, err := GenerateOrderNumber(at)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^ORD-20250410093015-[A-Z0-9]{6}$`)
	assert.Regexp(t, pattern, number)
}

func TestGenerateOrderNumberSuffixVaries(t *testing.T) {
	at := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		number, err := GenerateOrderNumber(at)
		require.NoError(t, err)
		seen[number] = true
	}
	// 36^6 combinations; 20 draws colliding down to one value would mean the
	// randomness is broken
	assert.Greater(t, len(seen), 1)
}
