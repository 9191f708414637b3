package overview

import (
	"sync"

	"go.uber.org/zap"
)

// Subscriber is called after every dispatch with the action and the resulting state
type Subscriber func(action Action, state State)

// Store holds the single overview state, use Dispatch to change it
type Store struct {
	// Mutex to protect access to state below
	mu    sync.RWMutex
	state State

	reducer     *Reducer
	subscribers []Subscriber
	log         *zap.Logger
}

// NewStore returns a store in the initial state
func NewStore(reducer *Reducer, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:   InitialState(),
		reducer: reducer,
		log:     log,
	}
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe adds a subscriber, called in order of subscription
func (s *Store) Subscribe(f Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, f)
}

// Dispatch applies action to the state and returns the new state
// subscribers are called outside the lock so they may read the store
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	prev := s.state
	s.state = s.reducer.Reduce(prev, action)
	next := s.state.Clone()
	subscribers := s.subscribers
	s.mu.Unlock()

	if action != nil {
		s.log.Debug("overview: dispatch", zap.String("type", action.Type()), zap.String("status", string(next.LoadingStatus)))
	}
	if next.Notification != prev.Notification && next.Notification.Variant == VariantDanger {
		s.log.Warn("overview: notification", zap.String("message", next.Notification.Message))
	}

	for _, f := range subscribers {
		f(action, next)
	}

	return next
}
