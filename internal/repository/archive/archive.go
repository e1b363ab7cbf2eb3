package archive

import (
	"context"
	"fmt"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/config"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository"
)

// New builds the archive backend selected in the object store config
func New(ctx context.Context, cfg config.ObjectStoreConfig) (repository.ArchiveRepository, error) {
	switch cfg.Backend {
	case config.ObjectStoreAzure:
		return NewAzureArchive(ctx, cfg.ConnectionString, cfg.Container)
	case config.ObjectStoreFilesystem:
		return NewFileArchive(cfg.BasePath)
	default:
		return nil, fmt.Errorf("unknown objectstore backend %q", cfg.Backend)
	}
}
