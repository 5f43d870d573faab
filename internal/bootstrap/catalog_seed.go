package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/pointshop/internal/catalog"
)

// SeedCatalog applies the seed file at path through the catalog service.
// Items that already exist by name are left untouched.
func SeedCatalog(ctx context.Context, svc catalog.Service, path string) (*catalog.SeedResult, error) {
	slog.Info(LogMsgSeedingCatalog, "path", path)
	loader := catalog.NewLoader()

	seed, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedSeed, err)
	}

	result, err := loader.Apply(ctx, svc, seed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedSeed, err)
	}

	slog.Info(LogMsgCatalogSeeded, "created", result.Created, "skipped", result.Skipped)
	return result, nil
}
