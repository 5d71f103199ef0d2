package data

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-polyexpr/execution/constants"
	"github.com/robbyt/go-polyexpr/execution/value"
)

func TestProvider_Interface(t *testing.T) {
	t.Parallel()

	var _ Provider = &StaticProvider{}
	var _ Provider = &ContextProvider{}
	var _ Provider = &CompositeProvider{}
	var _ Provider = &MockProvider{}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()
		src := map[string]any{"a": 1}
		p := NewStaticProvider(src)
		src["a"] = 2

		got, err := p.GetData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, got["a"])

		got["b"] = true
		again, err := p.GetData(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, again, "b")
	})

	t.Run("nil data", func(t *testing.T) {
		t.Parallel()
		got, err := NewStaticProvider(nil).GetData(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects runtime data", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		next, err := NewStaticProvider(nil).AddDataToContext(ctx, map[string]any{"x": 1})
		require.ErrorIs(t, err, ErrStaticProviderNoRuntimeUpdates)
		assert.Equal(t, ctx, next)
	})
}

func TestContextProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     constants.ContextKey
		items   []any
		want    map[string]any
		wantErr error
	}{
		{
			name:  "merges maps in order",
			key:   constants.EvalData,
			items: []any{map[string]any{"a": 1, "b": 1}, map[string]any{"b": 2}},
			want:  map[string]any{"a": 1, "b": 2},
		},
		{
			name:  "skips nil",
			key:   constants.EvalData,
			items: []any{nil, map[string]any{"a": 1}},
			want:  map[string]any{"a": 1},
		},
		{
			name:    "reports unsupported items but keeps the rest",
			key:     constants.EvalData,
			items:   []any{42, map[string]any{"a": 1}},
			want:    map[string]any{"a": 1},
			wantErr: ErrUnsupportedData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := NewContextProvider(tc.key)
			ctx, err := p.AddDataToContext(context.Background(), tc.items...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := p.GetData(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("accumulates across calls", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.EvalData)
		ctx, err := p.AddDataToContext(context.Background(), map[string]any{"a": 1})
		require.NoError(t, err)
		ctx, err = p.AddDataToContext(ctx, map[string]any{"b": 2})
		require.NoError(t, err)

		got, err := p.GetData(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider("")
		_, err := p.GetData(context.Background())
		require.ErrorIs(t, err, ErrEmptyContextKey)
		_, err = p.AddDataToContext(context.Background())
		require.ErrorIs(t, err, ErrEmptyContextKey)
	})

	t.Run("wrong stored type", func(t *testing.T) {
		t.Parallel()
		ctx := context.WithValue(context.Background(), constants.EvalData, "nope")
		_, err := NewContextProvider(constants.EvalData).GetData(ctx)
		require.ErrorIs(t, err, ErrUnsupportedData)
	})

	t.Run("no data yet", func(t *testing.T) {
		t.Parallel()
		got, err := NewContextProvider(constants.EvalData).GetData(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCompositeProvider(t *testing.T) {
	t.Parallel()

	t.Run("later providers override", func(t *testing.T) {
		t.Parallel()
		ctxProvider := NewContextProvider(constants.EvalData)
		p := NewCompositeProvider(
			NewStaticProvider(map[string]any{"a": "static", "s": 1}),
			nil,
			ctxProvider,
		)
		ctx, err := p.AddDataToContext(context.Background(), map[string]any{"a": "runtime"})
		require.NoError(t, err)

		got, err := p.GetData(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": "runtime", "s": 1}, got)
	})

	t.Run("only static providers", func(t *testing.T) {
		t.Parallel()
		p := NewCompositeProvider(NewStaticProvider(nil))
		_, err := p.AddDataToContext(context.Background(), map[string]any{"a": 1})
		require.ErrorIs(t, err, ErrStaticProviderNoRuntimeUpdates)
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		m := &MockProvider{}
		m.On("GetData", mock.Anything).Return(nil, boom)

		_, err := NewCompositeProvider(NewStaticProvider(nil), m).GetData(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "provider 1")
		m.AssertExpectations(t)
	})
}

func TestPrepareContextHelper(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()
		_, err := PrepareContextHelper(context.Background(), logger, nil)
		require.ErrorIs(t, err, ErrNoProvider)
	})

	t.Run("stores data", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.EvalData)
		ctx, err := PrepareContextHelper(context.Background(), logger, p, map[string]any{"x": 1})
		require.NoError(t, err)
		got, err := p.GetData(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"x": 1}, got)
	})
}

func TestVariables(t *testing.T) {
	t.Parallel()

	t.Run("converts values", func(t *testing.T) {
		t.Parallel()
		p := NewStaticProvider(map[string]any{"n": 5, "s": "hi", "list": []any{1, "x"}})
		vars, err := Variables(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, value.Int64(5), vars["n"])
		assert.Equal(t, value.String("hi"), vars["s"])
		assert.Equal(t, 2, vars["list"].Len())
	})

	t.Run("unsupported value", func(t *testing.T) {
		t.Parallel()
		p := NewStaticProvider(map[string]any{"ch": make(chan int)})
		_, err := Variables(context.Background(), p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ch"`)
	})

	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()
		vars, err := Variables(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, vars)
	})
}
