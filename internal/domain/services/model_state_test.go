package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudguard-lab/internal/domain/models"
)

func TestAIService_LoadStateMissingFile(t *testing.T) {
	svc, _, _ := newTestAIService(t)

	err := svc.LoadState(filepath.Join(t.TempDir(), "state.json"))

	// Missing state just means a cold start.
	require.NoError(t, err)
	assert.Empty(t, svc.TrainedChannels())
}

func TestAIService_LoadStateDiscardsBadSnapshots(t *testing.T) {
	svc, _, _ := newTestAIService(t)
	dir := t.TempDir()

	t.Run("corrupt payload", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		require.NoError(t, os.WriteFile(path, []byte("not-json{{"), 0o644))

		// A bad snapshot must not take the service down, it keeps
		// scoring on whatever models it already has.
		require.NoError(t, svc.LoadState(path))
	})

	t.Run("unknown version", func(t *testing.T) {
		path := filepath.Join(dir, "future.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"state_version": 99}`), 0o644))

		require.NoError(t, svc.LoadState(path))
	})

	assert.Empty(t, svc.TrainedChannels())
}

func TestAIService_SaveStateRoundTrip(t *testing.T) {
	trained, extractor, _ := newTestAIService(t)
	samples := emailTrainingSet()
	perf, err := trained.Train(models.ChannelEmail, samples)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "state.json")
	require.NoError(t, trained.SaveState(path))

	restored, _, _ := newTestAIService(t)
	require.NoError(t, restored.LoadState(path))

	assert.Equal(t, []models.Channel{models.ChannelEmail}, restored.TrainedChannels())

	loadedPerf := restored.Performance()[models.ChannelEmail]
	assert.Equal(t, perf.Samples, loadedPerf.Samples)
	assert.Equal(t, perf.ModelUsed, loadedPerf.ModelUsed)
	assert.Equal(t, perf.Accuracy, loadedPerf.Accuracy)

	// The restored forest must score exactly like the one it was
	// snapshotted from.
	for _, sample := range samples {
		ex := extractor.Extract(sample.Data, models.ChannelEmail)
		assert.Equal(t, trained.Score(ex, models.ChannelEmail), restored.Score(ex, models.ChannelEmail))
	}
}

func TestAIService_SaveStateSkipsUntrained(t *testing.T) {
	svc, _, _ := newTestAIService(t)
	_, err := svc.Train(models.ChannelEmail, emailTrainingSet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, svc.SaveState(path))

	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	var state ModelState
	require.NoError(t, json.Unmarshal(payload, &state))

	assert.Equal(t, 1, state.Version)
	assert.Len(t, state.Models, 1)
	assert.Contains(t, state.Models, models.ChannelEmail)
	assert.Equal(t, emailVectorDims, state.Models[models.ChannelEmail].VectorizerDims)
	assert.False(t, state.SavedAt.IsZero())
}

func TestAIService_LoadStateDiscardsDimensionMismatch(t *testing.T) {
	trained, _, _ := newTestAIService(t)
	_, err := trained.Train(models.ChannelEmail, emailTrainingSet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, trained.SaveState(path))

	// Rewrite the snapshot as if it came from a build hashing into 64
	// buckets.
	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	var state ModelState
	require.NoError(t, json.Unmarshal(payload, &state))
	state.Models[models.ChannelEmail].VectorizerDims = 64
	payload, err = json.Marshal(&state)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	// The incompatible snapshot is discarded whole, nothing is restored.
	restored, _, _ := newTestAIService(t)
	require.NoError(t, restored.LoadState(path))
	assert.Empty(t, restored.TrainedChannels())
	assert.Empty(t, restored.Performance())
}
