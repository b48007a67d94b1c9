package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fraudguard-lab/internal/domain/models"
)

// modelStateVersion tags the on-disk snapshot format
const modelStateVersion = 1

// ModelState is the on-disk snapshot of every trained classifier plus
// the per-channel training records.
type ModelState struct {
	Version     int                                        `json:"state_version"`
	SavedAt     time.Time                                  `json:"saved_at"`
	Models      map[models.Channel]*ChannelModelState      `json:"models"`
	Performance map[models.Channel]models.ModelPerformance `json:"performance"`
}

// ChannelModelState holds one channel's forest and, for text channels,
// the hash dimension count its vectors were built with.
type ChannelModelState struct {
	Forest         *ForestState `json:"forest"`
	VectorizerDims int          `json:"vectorizer_dims,omitempty"`
}

// SaveState writes all trained classifiers to path, creating parent
// directories as needed. Untrained channels are skipped.
func (s *AIService) SaveState(path string) error {
	state := &ModelState{
		Version:     modelStateVersion,
		SavedAt:     time.Now(),
		Models:      make(map[models.Channel]*ChannelModelState),
		Performance: s.Performance(),
	}

	for ch, model := range s.models {
		snapshot := model.forest.Snapshot()
		if snapshot == nil {
			continue
		}
		channelState := &ChannelModelState{Forest: snapshot}
		if model.vectorizer != nil {
			channelState.VectorizerDims = model.vectorizer.Dims
		}
		state.Models[ch] = channelState
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding model state: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating model state directory: %w", err)
		}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writing model state: %w", err)
	}

	s.log.Info().
		Str("path", path).
		Int("models", len(state.Models)).
		Msg("model state saved")
	return nil
}

// LoadState restores classifiers from a SaveState snapshot. A missing
// file just means a cold start; a corrupt or incompatible snapshot is
// discarded with a warning. Either way the live models stay untouched
// and the service keeps scoring.
func (s *AIService) LoadState(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn().Str("path", path).Msg("no saved model state found")
			return nil
		}
		return fmt.Errorf("reading model state: %w", err)
	}

	var state ModelState
	if err := json.Unmarshal(payload, &state); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("saved model state is corrupt, keeping current models")
		return nil
	}
	if state.Version != modelStateVersion {
		s.log.Warn().
			Int("version", state.Version).
			Str("path", path).
			Msg("unsupported model state version, keeping current models")
		return nil
	}

	for ch, channelState := range state.Models {
		model := s.models[ch]
		if model == nil || channelState == nil || channelState.Forest == nil {
			continue
		}
		if model.vectorizer != nil && channelState.VectorizerDims != 0 && channelState.VectorizerDims != model.vectorizer.Dims {
			s.log.Warn().
				Str("channel", string(ch)).
				Int("saved_dims", channelState.VectorizerDims).
				Int("want_dims", model.vectorizer.Dims).
				Msg("saved model state is incompatible, keeping current models")
			return nil
		}
	}

	restored := 0
	for ch, channelState := range state.Models {
		model := s.models[ch]
		if model == nil || channelState == nil || channelState.Forest == nil {
			s.log.Warn().Str("channel", string(ch)).Msg("skipping saved state for unknown channel")
			continue
		}
		if err := model.forest.Restore(channelState.Forest); err != nil {
			s.log.Warn().Err(err).Str("channel", string(ch)).Msg("skipping unrestorable classifier state")
			continue
		}
		restored++
	}

	if state.Performance != nil {
		s.mu.Lock()
		s.performance = state.Performance
		s.mu.Unlock()
	}

	s.log.Info().
		Str("path", path).
		Int("models", restored).
		Msg("model state loaded")
	return nil
}
