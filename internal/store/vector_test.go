package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedOrMax(t *testing.T) {
	assert.Equal(t, 2, boundedOrMax(2))
	assert.Equal(t, 1<<30, boundedOrMax(0))
	assert.Equal(t, 1<<30, boundedOrMax(-1))
}
