package donations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTransitionsExcludeCurrentStatus(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.NotContains(t, AllowedTransitions(status), status)
	}
}

func TestTransitionGraph(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, edge := range legal {
		assert.True(t, CanTransition(edge.from, edge.to), "%s -> %s should be legal", edge.from, edge.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusPending, StatusPending},
		{StatusPending, StatusCompleted},
		{StatusInProgress, StatusPending},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusCompleted},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusInProgress},
	}
	for _, edge := range illegal {
		assert.False(t, CanTransition(edge.from, edge.to), "%s -> %s should be illegal", edge.from, edge.to)
	}
}

func TestTerminalStatusesHaveNoActions(t *testing.T) {
	assert.Empty(t, AllowedTransitions(StatusCompleted))
	assert.Empty(t, AllowedTransitions(StatusCancelled))
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus("  Pending ")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, status)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}
