package profiles

import (
	"context"
	"sync"

	"github.com/ruminaider/confcascade/internal/config"
)

// LifecycleManager wraps one Loader and memoizes its last successful
// result. Concurrent callers share a single in-flight load.
type LifecycleManager struct {
	loader Loader

	mu      sync.Mutex
	pending *pendingLoad
}

type pendingLoad struct {
	done   chan struct{}
	result config.LoadResult
}

// NewLifecycleManager returns a manager for loader.
func NewLifecycleManager(loader Loader) *LifecycleManager {
	return &LifecycleManager{loader: loader}
}

// Description returns the loader's profile description.
func (m *LifecycleManager) Description() Description {
	return m.loader.Description()
}

// ID is shorthand for Description().ID.
func (m *LifecycleManager) ID() string {
	return m.loader.Description().ID
}

// LoadConfig returns a copy of the memoized result, running the loader if
// there is none, with extra appended to the config's context providers.
// Callers own the returned config and errors. A result without a config
// is not kept, so the next call retries.
func (m *LifecycleManager) LoadConfig(ctx context.Context, extra []config.ContextProvider) config.LoadResult {
	res := m.load(ctx)
	res.Config = res.Config.WithContextProviders(extra)
	res.Errors = append([]config.ValidationError{}, res.Errors...)
	return res
}

func (m *LifecycleManager) load(ctx context.Context) config.LoadResult {
	m.mu.Lock()
	if p := m.pending; p != nil {
		m.mu.Unlock()
		select {
		case <-p.done:
			return p.result
		case <-ctx.Done():
			return config.LoadResult{
				Errors: []config.ValidationError{{Message: ctx.Err().Error(), Fatal: true}},
			}
		}
	}
	p := &pendingLoad{done: make(chan struct{})}
	m.pending = p
	m.mu.Unlock()

	p.result = m.loader.Load(ctx)
	close(p.done)

	if p.result.Config == nil {
		m.mu.Lock()
		if m.pending == p {
			m.pending = nil
		}
		m.mu.Unlock()
	}
	return p.result
}

// ClearConfig drops the memoized result so the next LoadConfig re-runs
// the loader.
func (m *LifecycleManager) ClearConfig() {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}
