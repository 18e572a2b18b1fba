package breaker_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/libradesk/libradesk/pkg/breaker"
)

func TestBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	fail := func() error { return errors.New("remote down") }

	t.Run("stays closed on success", func(t *testing.T) {
		t.Parallel()
		b := breaker.New(10, 50*time.Millisecond, 0.5, 2)
		for i := 0; i < 30; i++ {
			require.NoError(t, b.Call(ok))
		}
	})

	t.Run("opens after failure threshold", func(t *testing.T) {
		t.Parallel()
		b := breaker.New(4, time.Minute, 0.5, 2)
		for i := 0; i < 2; i++ {
			require.Error(t, b.Call(fail))
		}
		err := b.Call(ok)
		require.ErrorIs(t, err, breaker.ErrOpen)
	})

	t.Run("recovers through half-open", func(t *testing.T) {
		t.Parallel()
		b := breaker.New(4, 10*time.Millisecond, 0.5, 1)
		for i := 0; i < 2; i++ {
			require.Error(t, b.Call(fail))
		}
		require.ErrorIs(t, b.Call(ok), breaker.ErrOpen)

		time.Sleep(20 * time.Millisecond)
		require.NoError(t, b.Call(ok))
		require.NoError(t, b.Call(ok))
		require.NoError(t, b.Call(ok))
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		t.Parallel()
		b := breaker.New(4, 10*time.Millisecond, 0.5, 5)
		for i := 0; i < 2; i++ {
			require.Error(t, b.Call(fail))
		}
		time.Sleep(20 * time.Millisecond)
		require.Error(t, b.Call(fail))
		require.ErrorIs(t, b.Call(ok), breaker.ErrOpen)
	})

	t.Run("reset closes immediately", func(t *testing.T) {
		t.Parallel()
		b := breaker.New(4, time.Minute, 0.5, 2)
		for i := 0; i < 2; i++ {
			require.Error(t, b.Call(fail))
		}
		require.ErrorIs(t, b.Call(ok), breaker.ErrOpen)
		b.Reset()
		require.NoError(t, b.Call(ok))
	})
}
