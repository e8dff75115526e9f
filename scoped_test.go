package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedSubscription_ZeroValueCloseIsNoop(t *testing.T) {
	var s ScopedSubscription[Base]
	require.NotPanics(t, func() { s.Close() })
}

func TestScopedSubscription_ResetReleasesPriorSubscriptionAndTakesNew(t *testing.T) {
	b := New()
	defer b.Close()

	var firstCalls, secondCalls int32
	s := NewScopedSubscription(b, func(Base) { atomic.AddInt32(&firstCalls, 1) })

	Publish(b, Base{N: 1})
	require.Equal(t, int32(1), atomic.LoadInt32(&firstCalls))

	s.Reset(b, func(Base) { atomic.AddInt32(&secondCalls, 1) })

	Publish(b, Base{N: 2})
	require.Equal(t, int32(1), atomic.LoadInt32(&firstCalls))
	require.Equal(t, int32(1), atomic.LoadInt32(&secondCalls))

	s.Close()
	Publish(b, Base{N: 3})
	require.Equal(t, int32(1), atomic.LoadInt32(&firstCalls))
	require.Equal(t, int32(1), atomic.LoadInt32(&secondCalls))
}

func TestScopedSubscription_ResetOnZeroValueTakesSubscriptionWithoutPriorClose(t *testing.T) {
	b := New()
	defer b.Close()

	var s ScopedSubscription[Base]
	var calls int32
	s.Reset(b, func(Base) { atomic.AddInt32(&calls, 1) })

	Publish(b, Base{N: 1})
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	s.Close()
	Publish(b, Base{N: 2})
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestScopedSubscription_CloseIsSafeConcurrently(t *testing.T) {
	b := New()
	defer b.Close()

	var calls int32
	s := NewScopedSubscription(b, func(Base) { atomic.AddInt32(&calls, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()

	Publish(b, Base{N: 1})
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
