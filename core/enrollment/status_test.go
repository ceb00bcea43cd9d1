package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	all := []Status{StatusJoined, StatusCompleted, StatusFailed, StatusWithdrawn}
	allowed := map[[2]Status]bool{
		{StatusJoined, StatusCompleted}: true,
		{StatusJoined, StatusFailed}:    true,
		{StatusJoined, StatusWithdrawn}: true,
	}
	for _, from := range all {
		for _, to := range all {
			err := Transition(from, to)
			if allowed[[2]Status{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStateTransition, "%s -> %s", from, to)
			}
		}
	}
	assert.ErrorIs(t, Transition("pending", StatusCompleted), ErrInvalidStateTransition)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusJoined.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusWithdrawn.Terminal())
	assert.False(t, Status("pending").Terminal())
	assert.False(t, Status("pending").Valid())
}
