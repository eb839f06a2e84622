package resolve

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/diag"
	"github.com/tonyfettes/dune/internal/memo"
)

func TestLift(t *testing.T) {
	ctx := context.Background()
	s := memo.NewSession()

	v, ok, err := Lift(Of(5)).Peek(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok, err = Lift(Fail[int](diag.Errorf("E"))).Peek(ctx, s)
	require.NoError(t, err, "a captured failure is not a graph failure")
	assert.False(t, ok)
}

func TestLiftNode(t *testing.T) {
	ctx := context.Background()
	s := memo.NewSession()

	n := memo.NewNode("answer", func(context.Context, *memo.Session) (int, error) {
		return 42, nil
	})
	v, ok, err := LiftNode(n).Peek(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestBindMemo(t *testing.T) {
	ctx := context.Background()

	t.Run("sequences graph then resolve", func(t *testing.T) {
		m := BindMemo("double", Lift(Of(21)), func(x int) Memo[int] {
			return Lift(Of(x * 2))
		})
		v, ok, err := m.Peek(ctx, memo.NewSession())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 42, v)
	})

	t.Run("inner failure short-circuits without calling f", func(t *testing.T) {
		m := BindMemo("never", Lift(Fail[int](diag.Errorf("E"))), func(int) Memo[int] {
			t.Fatal("bind function must not run on a failure")
			return Lift(Of(0))
		})
		ok, err := m.IsError(ctx, memo.NewSession())
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoSharing(t *testing.T) {
	ctx := context.Background()

	t.Run("success is evaluated once per session", func(t *testing.T) {
		var count atomic.Int32
		m := NewMemo("counted", func(context.Context, *memo.Session) Resolve[int] {
			count.Add(1)
			return Of(7)
		})

		s := memo.NewSession()
		for i := 0; i < 3; i++ {
			v, err := action.Run(ctx, s, m.Read())
			require.NoError(t, err)
			assert.Equal(t, 7, v)
		}
		assert.Equal(t, int32(1), count.Load())

		// A new session starts fresh.
		_, err := action.Run(ctx, memo.NewSession(), m.Read())
		require.NoError(t, err)
		assert.Equal(t, int32(2), count.Load())
	})

	t.Run("failure is cached, not recomputed", func(t *testing.T) {
		var count atomic.Int32
		m := NewMemo("failing", func(context.Context, *memo.Session) Resolve[int] {
			count.Add(1)
			return Fail[int](diag.Errorf("E"))
		})

		s := memo.NewSession()
		_, err1 := action.Run(ctx, s, m.Read())
		_, err2 := action.Run(ctx, s, m.Read())
		require.Error(t, err1)
		require.Error(t, err2)
		assert.Equal(t, int32(1), count.Load(), "the failing evaluation is shared")
		assert.Same(t, err1, err2, "repeated reads observe the same captured handle")
	})
}

func TestPushStackFrameMemo(t *testing.T) {
	ctx := context.Background()

	t.Run("success passes through, description unevaluated", func(t *testing.T) {
		m := PushStackFrameMemo(func() string {
			panic("description must not be evaluated for a success")
		}, func() Memo[int] { return Lift(Of(1)) })
		v, ok, err := m.Peek(ctx, memo.NewSession())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, v)
	})

	t.Run("failure gains the frame on rendering", func(t *testing.T) {
		m := PushStackFrameMemo(func() string { return "while linking app" },
			func() Memo[int] { return Lift(Fail[int](diag.Errorf("E"))) })
		_, err := action.Run(ctx, memo.NewSession(), m.Read())
		require.Error(t, err)
		assert.Equal(t, "while linking app: E", err.Error())
	})
}

func TestMemoProjections(t *testing.T) {
	ctx := context.Background()
	s := memo.NewSession()

	okM := Lift(Of(1))
	ok, err := okM.IsOK(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)

	errM := Lift(Fail[int](diag.Errorf("E")))
	bad, err := errM.IsError(ctx, s)
	require.NoError(t, err)
	assert.True(t, bad)
}
