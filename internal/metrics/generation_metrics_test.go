package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMetrics_Creation(t *testing.T) {
	t.Run("successfully create generation metrics", func(t *testing.T) {
		m, err := NewGenerationMetrics()
		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.NotNil(t, m.runsStartedCounter)
		assert.NotNil(t, m.runsCompletedCounter)
		assert.NotNil(t, m.runsFailedCounter)
		assert.NotNil(t, m.runDurationHistogram)
		assert.NotNil(t, m.artifactsCounter)
		assert.NotNil(t, m.warningsCounter)
	})
}

func TestGenerationMetrics_RecordRunStarted(t *testing.T) {
	m, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record run start", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunStarted(context.Background(), "Support Bot", "general")
		})
	})
}

func TestGenerationMetrics_RecordRunCompleted(t *testing.T) {
	m, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record run completion with counts", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunCompleted(context.Background(), "Support Bot", "general", 14, 0, 120*time.Millisecond)
		})
	})

	t.Run("record completion with warnings", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunCompleted(context.Background(), "Support Bot", "rag_only", 17, 2, time.Second)
		})
	})
}

func TestGenerationMetrics_RecordRunFailed(t *testing.T) {
	m, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record run failure", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunFailed(context.Background(), "Support Bot", "general", "invalid_cps", 10*time.Millisecond)
		})
	})
}
