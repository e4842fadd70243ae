package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStringDeterministic(t *testing.T) {
	first := HashString("what is kubernetes")
	second := HashString("what is kubernetes")
	other := HashString("what is docker")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}

func TestHashStringEmpty(t *testing.T) {
	assert.Len(t, HashString(""), 64)
}
