package background

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	resolves  atomic.Int32
	refreshes atomic.Int32

	gate chan struct{} // when set, Resolve blocks until it is closed

	resolve func(n int32) string
	refresh func(n int32) string
}

func (r *fakeResolver) Resolve(ctx context.Context) string {
	n := r.resolves.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	return r.resolve(n)
}

func (r *fakeResolver) Refresh(ctx context.Context) string {
	n := r.refreshes.Add(1)
	return r.refresh(n)
}

func numbered(prefix string) func(int32) string {
	return func(n int32) string { return fmt.Sprintf("%s-%d", prefix, n) }
}

func empty(int32) string { return "" }

func TestActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves once and reuses", func(t *testing.T) {
		r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
		s := New(r)

		assert.Equal(t, State{BackgroundURL: "init-1"}, s.Activate(ctx))
		assert.Equal(t, State{BackgroundURL: "init-1"}, s.Activate(ctx))
		assert.EqualValues(t, 1, r.resolves.Load())
	})

	t.Run("concurrent activations share one resolution", func(t *testing.T) {
		r := &fakeResolver{
			gate:    make(chan struct{}),
			resolve: numbered("init"),
			refresh: numbered("refresh"),
		}
		s := New(r)

		const consumers = 16
		results := make([]State, consumers)
		var wg sync.WaitGroup
		for i := 0; i < consumers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.Activate(ctx)
			}(i)
		}

		require.Eventually(t, func() bool {
			return r.resolves.Load() == 1
		}, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(r.gate)
		wg.Wait()

		assert.EqualValues(t, 1, r.resolves.Load())
		for _, st := range results {
			assert.Equal(t, "init-1", st.BackgroundURL)
		}
	})

	t.Run("failure leaves state empty and allows a retry", func(t *testing.T) {
		r := &fakeResolver{
			resolve: func(n int32) string {
				if n == 1 {
					return ""
				}
				return numbered("init")(n)
			},
			refresh: numbered("refresh"),
		}
		s := New(r)

		assert.Equal(t, State{}, s.Activate(ctx))
		assert.Equal(t, State{BackgroundURL: "init-2"}, s.Activate(ctx))
		assert.EqualValues(t, 2, r.resolves.Load())
	})

	t.Run("cancelled caller does not cancel the flight", func(t *testing.T) {
		r := &fakeResolver{
			gate:    make(chan struct{}),
			resolve: numbered("init"),
			refresh: numbered("refresh"),
		}
		s := New(r)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Equal(t, State{}, s.Activate(cctx))

		close(r.gate)
		require.Eventually(t, func() bool {
			return s.CurrentURL() == "init-1"
		}, time.Second, time.Millisecond)
	})
}

func TestMarkLoaded(t *testing.T) {
	r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
	s := New(r)
	s.Activate(context.Background())

	assert.False(t, s.IsLoaded())
	s.MarkLoaded()
	s.MarkLoaded()
	assert.True(t, s.IsLoaded())
	assert.Equal(t, "init-1", s.CurrentURL())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("success replaces url and resets loaded", func(t *testing.T) {
		r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
		s := New(r)
		s.Activate(ctx)
		s.MarkLoaded()

		st, ok := s.Refresh(ctx)
		assert.True(t, ok)
		assert.Equal(t, State{BackgroundURL: "refresh-1"}, st)
		assert.Equal(t, st, s.State())
	})

	t.Run("failure keeps prior state", func(t *testing.T) {
		r := &fakeResolver{resolve: numbered("init"), refresh: empty}
		s := New(r)
		s.Activate(ctx)
		s.MarkLoaded()

		st, ok := s.Refresh(ctx)
		assert.False(t, ok)
		assert.Equal(t, State{BackgroundURL: "init-1", IsLoaded: true}, st)
		assert.Equal(t, st, s.State())
	})

	t.Run("trigger runs asynchronously", func(t *testing.T) {
		r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
		s := New(r)

		s.TriggerRefresh(ctx)
		require.Eventually(t, func() bool {
			return s.CurrentURL() == "refresh-1"
		}, time.Second, time.Millisecond)
	})

	t.Run("activation after refresh does not resolve", func(t *testing.T) {
		r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
		s := New(r)

		_, ok := s.Refresh(ctx)
		require.True(t, ok)
		assert.Equal(t, "refresh-1", s.Activate(ctx).BackgroundURL)
		assert.EqualValues(t, 0, r.resolves.Load())
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
	s := New(r)

	updates, cancel := s.Subscribe()

	s.Activate(ctx)
	assert.Equal(t, State{BackgroundURL: "init-1"}, <-updates)

	s.MarkLoaded()
	assert.Equal(t, State{BackgroundURL: "init-1", IsLoaded: true}, <-updates)

	// a slow subscriber only sees the newest state
	s.Refresh(ctx)
	s.Refresh(ctx)
	assert.Equal(t, State{BackgroundURL: "refresh-2"}, <-updates)

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)

	// no panic broadcasting after unsubscribe
	s.MarkLoaded()
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	r := &fakeResolver{resolve: numbered("init"), refresh: numbered("refresh")}
	s := New(r)

	s.Activate(ctx)
	s.MarkLoaded()
	s.Reset()
	assert.Equal(t, State{}, s.State())

	assert.Equal(t, State{BackgroundURL: "init-2"}, s.Activate(ctx))
}
