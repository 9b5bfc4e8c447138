package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanupClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rm := NewRateLimiter(Limits{Rate: 1, Burst: 1}, Limits{Rate: 1, Burst: 1})
	rm.now = func() time.Time { return now }

	rm.getClientLimiter("old")
	now = now.Add(20 * time.Minute)
	rm.getClientLimiter("recent")
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, rm.cleanupClients())
	_, oldExists := rm.clients["old"]
	_, recentExists := rm.clients["recent"]
	assert.False(t, oldExists)
	assert.True(t, recentExists)
}
