package ai

import (
	"context"
	"time"

	"diet-planner-api/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*NoopAdapter)(nil)

// NoopAdapter implements adapter.TextGenerator for local/dev testing.
// It returns a fixed reply instead of calling a real provider.
type NoopAdapter struct {
	Reply string
}

func NewNoopAdapter(reply string) *NoopAdapter {
	return &NoopAdapter{Reply: reply}
}

func (a *NoopAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return a.Reply, nil
}
