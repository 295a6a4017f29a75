package scheduler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduledTask(t *testing.T) {
	logger := logrus.New()

	t.Run("should reject a malformed spec", func(t *testing.T) {
		_, err := NewScheduledTask("every tuesday", logger, func() {})
		assert.Error(t, err)
	})

	t.Run("should report the next run", func(t *testing.T) {
		task, err := NewScheduledTask("0 6 * * *", logger, func() {})
		require.NoError(t, err)
		defer task.Cancel()

		next := task.Next()
		assert.True(t, next.After(time.Now()))
		assert.Equal(t, 6, next.Hour())
		assert.Equal(t, 0, next.Minute())
	})

	t.Run("should tolerate repeated cancel", func(t *testing.T) {
		task, err := NewScheduledTask("@every 1h", logger, func() {})
		require.NoError(t, err)
		task.Cancel()
		assert.NotPanics(t, task.Cancel)
	})
}
