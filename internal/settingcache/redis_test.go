package settingcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultsTTLWhenNonPositive(t *testing.T) {
	// New requires a live Redis connection to construct; this test exercises
	// the pure TTL-defaulting branch via a package-level helper instead of
	// dialing out.
	assert.Equal(t, 5*time.Minute, defaultTTL(0))
	assert.Equal(t, 5*time.Minute, defaultTTL(-1))
	assert.Equal(t, 30*time.Second, defaultTTL(30*time.Second))
}
