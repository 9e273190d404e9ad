// Package background holds the resolved background URL shared by every
// consumer of the process, together with the consumers' "loaded" ack.
package background

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/flashbots/backdrop/metrics"
)

// Resolver is what the service needs from the resolution layer.  Both
// methods return "" on failure.
type Resolver interface {
	Resolve(ctx context.Context) string
	Refresh(ctx context.Context) string
}

type State struct {
	BackgroundURL string `json:"backgroundUrl"`
	IsLoaded      bool   `json:"isLoaded"`
}

type Service struct {
	resolver Resolver
	log      *zap.Logger

	flight singleflight.Group

	mx     sync.RWMutex
	url    string
	loaded bool

	subs   map[uint64]chan State
	nextID uint64
}

func New(resolver Resolver) *Service {
	return &Service{
		resolver: resolver,
		log:      zap.L(),
		subs:     make(map[uint64]chan State),
	}
}

func (s *Service) State() State {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return State{BackgroundURL: s.url, IsLoaded: s.loaded}
}

func (s *Service) CurrentURL() string {
	return s.State().BackgroundURL
}

func (s *Service) IsLoaded() bool {
	return s.State().IsLoaded
}

// Activate makes sure the background is resolved.  A populated URL is
// returned without any I/O.  Otherwise the caller joins the resolution in
// flight, or starts one.  After a failed resolution the URL stays empty and
// the next Activate tries again.
func (s *Service) Activate(ctx context.Context) State {
	if st := s.State(); st.BackgroundURL != "" {
		return st
	}

	// the shared flight must outlive any single caller
	flightCtx := context.WithoutCancel(ctx)

	ch := s.flight.DoChan("init", func() (interface{}, error) {
		// a flight that completed between our check and DoChan already
		// populated the URL
		if url := s.CurrentURL(); url != "" {
			return url, nil
		}

		url := s.resolver.Resolve(flightCtx)
		if url == "" {
			s.log.Warn("Background initialization failed; will retry on next activation")
			return "", nil
		}

		s.set(url)
		return url, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}

	return s.State()
}

// MarkLoaded records that consumers have displayed the current background.
func (s *Service) MarkLoaded() {
	s.mx.Lock()
	s.loaded = true
	st := State{BackgroundURL: s.url, IsLoaded: true}
	s.broadcast(st)
	s.mx.Unlock()

	metrics.BackgroundLoaded.Record(context.Background(), 1)
}

// Refresh replaces the background with a freshly fetched one.  When the new
// candidate fails to load the state is left untouched and false is returned.
func (s *Service) Refresh(ctx context.Context) (State, bool) {
	url := s.resolver.Refresh(ctx)
	if url == "" {
		return s.State(), false
	}

	return s.set(url), true
}

// TriggerRefresh runs Refresh in the background.  Concurrent refreshes are
// not serialized; the last one to finish wins.
func (s *Service) TriggerRefresh(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, ok := s.Refresh(ctx); !ok {
			s.log.Warn("Background refresh failed; keeping the current one")
		}
	}()
}

// Subscribe returns a channel that receives the state after every change,
// and a function that cancels the subscription.  A subscriber that falls
// behind only ever sees the newest state.
func (s *Service) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mx.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mx.Unlock()

	metrics.Subscribers.Add(context.Background(), 1)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mx.Lock()
			delete(s.subs, id)
			close(ch)
			s.mx.Unlock()

			metrics.Subscribers.Add(context.Background(), -1)
		})
	}
}

// Reset forgets the resolved background.  Subscriptions are kept.
func (s *Service) Reset() {
	s.mx.Lock()
	s.url = ""
	s.loaded = false
	s.broadcast(State{})
	s.mx.Unlock()

	s.flight.Forget("init")
	metrics.BackgroundLoaded.Record(context.Background(), 0)
}

func (s *Service) set(url string) State {
	s.mx.Lock()
	s.url = url
	s.loaded = false
	st := State{BackgroundURL: url}
	s.broadcast(st)
	s.mx.Unlock()

	metrics.BackgroundLoaded.Record(context.Background(), 0)
	return st
}

// broadcast must be called with mx held.
func (s *Service) broadcast(st State) {
	for _, ch := range s.subs {
		select { // drop the stale state, if any
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
