package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ContextHandler_Handle(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      func() context.Context
		expected map[string]any
		absent   []string
	}{
		{
			name:   "plain context",
			ctx:    context.Background,
			absent: []string{"request_id", "trace_id", "product_id"},
		},
		{
			name: "request id",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
			},
			expected: map[string]any{"request_id": "req-1"},
		},
		{
			name: "attributes from context",
			ctx: func() context.Context {
				ctx := WithAttrs(context.Background(), slog.Int64("product_id", 7))
				return WithAttrs(ctx, slog.String("op", "update"))
			},
			expected: map[string]any{"product_id": float64(7), "op": "update"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

			// when
			log.InfoContext(tc.ctx(), "hello")

			// then
			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			for k, v := range tc.expected {
				assert.Equal(t, v, record[k], k)
			}
			for _, k := range tc.absent {
				assert.NotContains(t, record, k)
			}
		})
	}
}
