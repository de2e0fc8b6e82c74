package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDShapeAndUniqueness(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		assert.Len(t, id, 24)
		assert.False(t, seen[id], "ids must not repeat within a burst")
		seen[id] = true
	}
}

func TestGenerateTimestampPrefix(t *testing.T) {
	t.Parallel()
	prefix := GenerateTimestampPrefix()
	assert.Len(t, prefix, 9)
	assert.Equal(t, byte('_'), prefix[8])
}
