package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewJobID(t *testing.T) {
	now := time.Unix(1724500000, 0)

	id1 := NewJobID(now)
	id2 := NewJobID(now)

	assert.True(t, strings.HasPrefix(id1, "pii-job-1724500000-"))
	// 同時刻でもUUIDサフィックスで衝突しない
	assert.NotEqual(t, id1, id2)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusStopped.Terminal())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("Unknown").Valid())
}
