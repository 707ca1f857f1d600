package manager

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// LoadModel loads an already-downloaded model on caller request. Guarded by
// the same hard admission policy as downloads. Transient engine failures are
// retried with a fixed delay up to the configured attempt budget; a resource
// rejection is never retried.
func (m *Manager) LoadModel(ctx context.Context, modelID, key string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	return m.load(ctx, modelID, key)
}

func (m *Manager) load(ctx context.Context, modelID, key string) error {
	mdl, ok := m.cat.Lookup(key)
	if !ok {
		err := ErrModelNotFound(key)
		m.publish(Failed("%v", err))
		return err
	}
	admitted, reason := m.probe.CanLoad(mdl)
	if !admitted {
		m.publish(Failed("%s", reason))
		return resourceRejectedError{reason: reason}
	}
	if reason != "" {
		m.log.Warn().Str("model", key).Msg(reason)
	}

	m.publish(Loading(mdl.Name))

	attempts := 0
	op := func() error {
		attempts++
		loaded, err := m.loader.Load(ctx, modelID)
		if err != nil {
			return err
		}
		if !loaded {
			return fmt.Errorf("engine declined to load %s", modelID)
		}
		return nil
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.retryDelay), uint64(m.loadAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		m.mu.Lock()
		m.loadFailuresTotal++
		m.mu.Unlock()
		loadFailures.Inc()
		m.log.Error().Err(err).Str("model", key).Int("attempts", attempts).Msg("load exhausted retries")
		m.publish(Failed("load failed after %d attempts: %v", attempts, err))
		return loadFailedError{attempts: attempts, err: err}
	}

	m.mu.Lock()
	m.loadsTotal++
	m.cur = &currentModel{Key: key, Name: mdl.Name, ID: modelID}
	m.mu.Unlock()
	loads.Inc()

	// Fire-and-forget; persistence must not block state publication.
	m.prefs.SetLastLoadedModelAsync(key)

	m.log.Info().Str("model", key).Str("model_id", modelID).Int("attempts", attempts).Msg("model ready")
	m.publish(Ready(mdl.Name, modelID))
	return nil
}
