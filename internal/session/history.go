package session

import (
	"errors"

	"perkplan/internal/config"
	"perkplan/internal/store"
)

// ErrStoreDisabled is returned when plan history is turned off in the config.
var ErrStoreDisabled = errors.New("plan history is disabled")

// History opens the plan history database on first use.
func (s *Session) History() (*store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store, nil
	}
	if !s.cfg.Store.Enabled {
		return nil, ErrStoreDisabled
	}
	st, err := store.Open(config.Resolve(s.base, s.cfg.Store.Path), s.cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	s.store = st
	return st, nil
}

// Save stores the last plan with the inputs that produced it.
func (s *Session) Save() (string, error) {
	plan := s.Last()
	if plan == nil {
		return "", ErrNoPlan
	}
	st, err := s.History()
	if err != nil {
		return "", err
	}
	return st.SavePlan(&store.Record{
		Title:     s.cfg.Output.Title,
		Policy:    s.policy,
		Stats:     s.stats.Clone(),
		Selection: s.Selection().Entries(),
		Plan:      plan,
	})
}

// Close releases the history database if it was opened.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
