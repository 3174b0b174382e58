package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*Store, *clock) {
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	factory := func(key string) *conversation.Machine {
		return conversation.NewMachine(key, nil, nil)
	}
	return NewStore(factory, WithClock(clk.Now), WithIdleTimeout(30*time.Minute)), clk
}

func advance(t *testing.T, s *Store, key string) {
	t.Helper()
	s.Update(key, func(sess *Session) {
		sess.Machine.Send(context.Background(), conversation.Simple(conversation.EventStart))
		sess.Machine.Send(context.Background(), conversation.AddToCart(product.Product{ID: "42", Name: "Café", Price: decimal.RequireFromString("4.50")}, 1))
	})
}

func TestGetCreatesIdleSession(t *testing.T) {
	s, _ := newTestStore()

	sess := s.Get("5511")
	require.NotNil(t, sess)
	assert.Equal(t, "5511", sess.CustomerKey)
	assert.Equal(t, conversation.StateIdle, sess.Machine.State())
	assert.Equal(t, 1, s.Len())

	assert.Same(t, sess, s.Get("5511"))
}

func TestUpdateRefreshesActivity(t *testing.T) {
	s, clk := newTestStore()
	s.Get("5511")

	clk.Advance(20 * time.Minute)
	advance(t, s, "5511")

	clk.Advance(20 * time.Minute)
	sess := s.Get("5511")
	assert.Equal(t, conversation.StateSelectingProducts, sess.Machine.State())
	assert.Equal(t, clk.Now().Add(-20*time.Minute), sess.LastActivity)
}

func TestExpiredSessionIsReplaced(t *testing.T) {
	s, clk := newTestStore()
	advance(t, s, "5511")
	old := s.Get("5511")

	clk.Advance(31 * time.Minute)
	sess := s.Get("5511")

	assert.NotSame(t, old, sess)
	assert.Equal(t, conversation.StateIdle, sess.Machine.State())
	assert.True(t, sess.Machine.Context().Cart.IsEmpty())
	assert.Equal(t, clk.Now(), sess.CreatedAt)
}

func TestResetDeletesSession(t *testing.T) {
	s, _ := newTestStore()
	advance(t, s, "5511")
	old := s.Get("5511")

	s.Reset("5511")
	assert.Equal(t, 0, s.Len())

	sess := s.Get("5511")
	assert.NotSame(t, old, sess)
	assert.Equal(t, conversation.StateIdle, sess.Machine.State())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	s, clk := newTestStore()
	s.Get("a")
	clk.Advance(20 * time.Minute)
	s.Get("b")

	clk.Advance(15 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, ok, err := s.Snapshot(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSweepSkipsLockedSessions(t *testing.T) {
	s, clk := newTestStore()
	_, release, err := s.Acquire(context.Background(), "a")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())

	release()
	clk.Advance(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Len())
}

func TestAcquireSerializesPerKey(t *testing.T) {
	s, _ := newTestStore()
	_, release, err := s.Acquire(context.Background(), "a")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		_, rel, err := s.Acquire(context.Background(), "a")
		if err == nil {
			rel()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should wait for release")
	case <-time.After(50 * time.Millisecond):
	}

	// outra chave não espera
	_, relB, err := s.Acquire(context.Background(), "b")
	require.NoError(t, err)
	relB()

	release()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second acquire")
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	s, _ := newTestStore()
	_, release, err := s.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err = s.Acquire(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseIsIdempotent(t *testing.T) {
	s, _ := newTestStore()
	_, release, err := s.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
	release()

	_, release, err = s.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
}

func TestConcurrentUpdatesDoNotLoseItems(t *testing.T) {
	s, _ := newTestStore()
	s.Update("a", func(sess *Session) {
		sess.Machine.Send(context.Background(), conversation.Simple(conversation.EventStart))
	})

	p := product.Product{ID: "42", Name: "Café", Price: decimal.RequireFromString("4.50")}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("a", func(sess *Session) {
				sess.Machine.Send(context.Background(), conversation.AddToCart(p, 1))
			})
		}()
	}
	wg.Wait()

	view, ok, err := s.Snapshot(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, view.Context.Cart.Quantity("42"))
}

func TestSnapshotDoesNotCreate(t *testing.T) {
	s, clk := newTestStore()

	_, ok, err := s.Snapshot(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	advance(t, s, "x")
	view, ok, err := s.Snapshot(context.Background(), "x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, conversation.StateSelectingProducts, view.State)

	clk.Advance(time.Hour)
	_, ok, err = s.Snapshot(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, clk := newTestStore()
	s.Get("a")
	clk.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
}
