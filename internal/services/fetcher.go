// internal/services/fetcher.go
package services

import (
	"context"
	"math"
	"path"
)

// Fetcher produces one category signal from raw content.
//
// A fetcher absorbs oracle failures by degrading to its local heuristic. It
// only returns an error when it could not produce any signal, typically
// because ctx expired.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, content string) (T, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc[T any] func(ctx context.Context, content string) (T, error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, content string) (T, error) {
	return f(ctx, content)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampUnit(v float64) float64 {
	return clamp(v, 0, 1)
}

// modelSource tags a signal with the last path segment of its model
func modelSource(model string) string {
	return "huggingface-" + path.Base(model)
}
