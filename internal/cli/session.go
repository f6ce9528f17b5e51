package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/backend"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// session is a store loaded from the configured backend.
type session struct {
	cfg     types.Config
	store   *store.Store
	backend types.Persister
	log     *zap.Logger
}

// openSession loads the store from the configured backend. A backend with
// nothing saved yet yields an empty store. The caller must call close.
func (a *app) openSession() (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	p, err := backend.Open(cfg)
	if err != nil {
		return nil, sysErr(fmt.Errorf("open %s backend: %w", cfg.Backend, err))
	}

	s := store.New(store.WithLogger(a.log))
	snap, err := p.Load()
	switch {
	case errors.Is(err, types.ErrNoSnapshot):
		a.log.Debug("no snapshot saved; starting empty", zap.String("backend", cfg.Backend))
	case err != nil:
		p.Close()
		return nil, sysErr(fmt.Errorf("load store: %w", err))
	default:
		if err := s.Load(snap); err != nil {
			p.Close()
			return nil, sysErr(fmt.Errorf("load store: %w", err))
		}
	}

	return &session{cfg: cfg, store: s, backend: p, log: a.log}, nil
}

// commit saves the store's current contents.
func (ss *session) commit() error {
	if err := ss.backend.Save(ss.store.Snapshot()); err != nil {
		return sysErr(fmt.Errorf("save store: %w", err))
	}
	ss.log.Debug("store saved", zap.String("backend", ss.cfg.Backend), zap.String("data_dir", ss.cfg.DataDir))
	return nil
}

func (ss *session) close() {
	if err := ss.backend.Close(); err != nil {
		ss.log.Warn("close backend", zap.Error(err))
	}
}
