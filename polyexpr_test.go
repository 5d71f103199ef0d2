package polyexpr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/ops"
	"github.com/robbyt/go-polyexpr/execution/script"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/robbyt/go-polyexpr/options"
)

func newEvaluator(t *testing.T, opts ...options.Option) *Evaluator {
	t.Helper()
	ev, err := New(append([]options.Option{options.WithLogger(slog.DiscardHandler)}, opts...)...)
	require.NoError(t, err)
	return ev
}

func prepare(t *testing.T, ev *Evaluator, vars map[string]any) context.Context {
	t.Helper()
	ctx, err := ev.PrepareContext(context.Background(), vars)
	require.NoError(t, err)
	return ctx
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		ev := newEvaluator(t)
		assert.Equal(t, "polyexpr.Evaluator", ev.String())
		assert.NotNil(t, ev.Context())
		assert.Equal(t, 256, ev.Cache().Capacity())
	})

	t.Run("cache capacity", func(t *testing.T) {
		ev := newEvaluator(t, options.WithCacheCapacity(8), options.WithoutCacheLocking())
		assert.Equal(t, 8, ev.Cache().Capacity())
	})

	t.Run("option error", func(t *testing.T) {
		_, err := New(options.WithCacheCapacity(-1))
		require.ErrorIs(t, err, options.ErrNegativeCapacity)
	})

	t.Run("custom context", func(t *testing.T) {
		ec, err := env.New(env.WithLogHandler(slog.DiscardHandler))
		require.NoError(t, err)
		ev := newEvaluator(t, options.WithContext(ec))
		assert.Same(t, ec, ev.Context())
	})
}

func TestEval(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	ctx := prepare(t, ev, map[string]any{
		"name":    "World",
		"excited": true,
		"scores":  []any{3, 9, 4},
	})

	tests := []struct {
		text string
		want value.Value
	}{
		{`"Hello, " + name + "!"`, value.String("Hello, World!")},
		{`("Hello, " + name + "!").Length`, value.Int32(13)},
		{"name.Length > 3 and excited", value.Bool(true)},
		{"scores.Length", value.Int32(3)},
		{"9 in scores", value.Bool(true)},
		{`coalesce(None, name)`, value.String("World")},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got, err := ev.Eval(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalWithoutData(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	got, err := ev.Eval(context.Background(), "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, value.Int32(3), got)

	_, err = ev.Eval(context.Background(), "name")
	require.ErrorIs(t, err, ErrMissingMember)
}

func TestEvalTo(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)

	got, err := ev.EvalTo(context.Background(), "1 + 2", value.Float64Type)
	require.NoError(t, err)
	assert.Equal(t, value.Float64(3), got)

	got, err = ev.EvalTo(context.Background(), `"42"`, value.Int64Type)
	require.NoError(t, err)
	assert.Equal(t, value.Int64(42), got)

	got, err = ev.EvalTo(context.Background(), "7", nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int32(7), got)

	_, err = ev.EvalTo(context.Background(), `"seven"`, value.Int32Type)
	require.ErrorIs(t, err, ErrInvalidCast)

	var castErr *InvalidCastError
	require.ErrorAs(t, err, &castErr)
	assert.Equal(t, "string", castErr.From)
}

func TestEvalAs(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	ctx := prepare(t, ev, map[string]any{"name": "World"})

	s, err := EvalAs[string](ctx, ev, `"Hello, " + name`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", s)

	i, err := EvalAs[int32](ctx, ev, "name.Length")
	require.NoError(t, err)
	assert.Equal(t, int32(5), i)

	l, err := EvalAs[int64](ctx, ev, "40 + 2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), l)

	f, err := EvalAs[float64](ctx, ev, `"2.5"`)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 0)

	b, err := EvalAs[bool](ctx, ev, `"true"`)
	require.NoError(t, err)
	assert.True(t, b)

	items, err := EvalAs[[]any](ctx, ev, "[1, 2]")
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2)}, items)

	none, err := EvalAs[string](ctx, ev, "None")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = EvalAs[map[string]any](ctx, ev, "1")
	require.ErrorIs(t, err, ErrInvalidCast)

	_, err = EvalAs[int32](ctx, ev, "1 +")
	require.ErrorIs(t, err, script.ErrCompiler)
}

func TestEvalAsPlatformIntsAndSlices(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	ctx := context.Background()

	n, err := EvalAs[int](ctx, ev, `"42"`)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	u, err := EvalAs[uint](ctx, ev, "40 + 2")
	require.NoError(t, err)
	assert.Equal(t, uint(42), u)

	_, err = EvalAs[uint](ctx, ev, "-1")
	require.ErrorIs(t, err, ErrInvalidCast)

	ints, err := EvalAs[[]int32](ctx, ev, "[1, 2]")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, ints)

	wide, err := EvalAs[[]int](ctx, ev, `[1, "2"]`)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, wide)

	words, err := EvalAs[[]string](ctx, ev, "[1, 2.5]")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2.5"}, words)

	single, err := EvalAs[[]float64](ctx, ev, "3")
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, single)

	type label string
	l, err := EvalAs[label](ctx, ev, `"ok"`)
	require.NoError(t, err)
	assert.Equal(t, label("ok"), l)
}

func TestCompileIsCached(t *testing.T) {
	t.Parallel()

	comp := new(script.MockCompiler)
	comp.On("Compile", "answer").Return(ops.NewPush(value.Int32(42)), nil).Once()
	comp.On("Compile", "broken").Return(nil, errors.New("syntax error"))

	ev := newEvaluator(t, options.WithCompiler(comp))
	for range 3 {
		got, err := ev.Eval(context.Background(), "answer")
		require.NoError(t, err)
		assert.Equal(t, value.Int32(42), got)
	}
	assert.Equal(t, 1, ev.Cache().Len())

	for range 2 {
		_, err := ev.Eval(context.Background(), "broken")
		require.ErrorIs(t, err, script.ErrCompiler)
		require.ErrorContains(t, err, "syntax error")
	}
	assert.Equal(t, 1, ev.Cache().Len())

	comp.AssertNumberOfCalls(t, "Compile", 3)
	comp.AssertExpectations(t)
}

func TestCacheHoldsExecutableUnits(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	ctx := context.Background()

	_, err := ev.Eval(ctx, "1 + 1")
	require.NoError(t, err)
	first, ok := ev.Cache().Get("1 + 1")
	require.True(t, ok)
	assert.Equal(t, script.ExpressionID("1 + 1"), first.ID)

	got, err := ev.Eval(ctx, "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, value.Int32(2), got)

	again, ok := ev.Cache().Get("1 + 1")
	require.True(t, ok)
	assert.Same(t, first, again, "a cache hit reuses the unit")

	op, err := ev.Compile("1 + 1")
	require.NoError(t, err)
	assert.Same(t, first.Operation, op)
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	comp := new(script.MockCompiler)
	comp.On("Compile", mock.Anything).Return(ops.NewPush(value.Bool(true)), nil)

	ev := newEvaluator(t, options.WithCompiler(comp), options.WithCacheCapacity(2))
	for _, text := range []string{"a", "b", "a", "c", "a"} {
		_, err := ev.Eval(context.Background(), text)
		require.NoError(t, err)
	}

	// "a" is evicted by "c" even though it was just used.
	comp.AssertNumberOfCalls(t, "Compile", 4)
	assert.Equal(t, 2, ev.Cache().Len())
}

func TestEvalOperation(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)

	_, err := ev.EvalOperation(context.Background(), nil)
	require.ErrorIs(t, err, script.ErrNilOperation)

	op := ops.NewSequence(
		ops.NewVariableAccess(ops.Name("x"), ops.Literal(value.Int32(0))),
		ops.NewPush(value.Int32(1)),
		ops.NewCall("Add", true, false, 1),
	)

	got, err := ev.EvalOperation(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, value.Int32(1), got)

	got, err = ev.EvalOperation(prepare(t, ev, map[string]any{"x": int32(9)}), op)
	require.NoError(t, err)
	assert.Equal(t, value.Int32(10), got)
}

func TestAssignDoesNotLeakBetweenCalls(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)
	ctx := prepare(t, ev, map[string]any{"seed": int32(1)})

	got, err := ev.Eval(ctx, `assign("seed", 5) + seed`)
	require.NoError(t, err)
	assert.Equal(t, value.Int32(10), got)

	got, err = ev.Eval(ctx, "seed")
	require.NoError(t, err)
	assert.Equal(t, value.Int32(1), got)

	_, ok := ev.Context().TryGetVariable("seed")
	assert.False(t, ok)
}

func TestErrorAliases(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)

	_, err := ev.Eval(context.Background(), "missing.Thing")
	require.ErrorIs(t, err, ErrMissingMember)
	var mm *MissingMemberError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "missing.Thing", mm.Name)

	_, err = ev.Eval(context.Background(), "dump(1)")
	require.ErrorIs(t, err, ErrNotPermitted)

	_, err = ev.EvalOperation(context.Background(), ops.NewVariableAccess(ops.Name("a"), ops.Name("b")))
	require.ErrorIs(t, err, ErrUndefinedVariable)
	var undef *UndefinedVariableError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, []string{"a", "b"}, undef.Names)

	_, err = ev.EvalOperation(context.Background(), ops.NewCall("Add", true, false, 1))
	require.ErrorIs(t, err, ErrInvalidProgram)
}

func TestConcurrentEval(t *testing.T) {
	t.Parallel()

	ev := newEvaluator(t)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, err := ev.PrepareContext(context.Background(), map[string]any{"n": int32(i)})
			if !assert.NoError(t, err) {
				return
			}
			got, err := ev.Eval(ctx, fmt.Sprintf("n * %d", i%4))
			if assert.NoError(t, err) {
				assert.Equal(t, value.Int32(int32(i*(i%4))), got)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, ev.Cache().Len())
}
