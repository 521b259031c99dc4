package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first error
// stops the fan-out.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, events); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}

// DiscardLoader accepts every batch. It is used when no sink is configured
// and the alert store is the only output.
type DiscardLoader struct{}

func (DiscardLoader) LoadBatch(context.Context, []domain.OutputEvent) error { return nil }
