package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	a := Digest("search=costco", "sort=name")
	assert.Len(t, a, 32)
	assert.Equal(t, a, Digest("search=costco", "sort=name"))
	assert.NotEqual(t, a, Digest("sort=name", "search=costco"))
	assert.NotEqual(t, Digest("ab", "c"), Digest("a", "bc"))
}
