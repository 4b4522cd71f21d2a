package stores

import (
	"canvas-templates/config"
	"canvas-templates/core"
	"canvas-templates/stores/aws"
	"canvas-templates/stores/filesystem"
	"canvas-templates/stores/memory"
	"canvas-templates/stores/sqlite"
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// GetStore opens the token store selected by cfg.StorageType.
func GetStore(ctx context.Context, cfg config.Storage) (core.TokenStore, error) {
	var (
		store core.TokenStore
		err   error
	)

	storageField := logrus.Fields{
		"storage_type": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		basePath := cfg.Path
		if basePath == "" {
			basePath = "./data" // Default path
		}
		storageField["base_path"] = basePath
		store, err = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := cfg.DataSourceName
		if dataSourceName == "" {
			dataSourceName = "canvas-templates.db" // Default filename
		}
		storageField["data_source_name"] = dataSourceName
		store, err = sqlite.NewStore(ctx, dataSourceName)
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("TOKEN_S3_BUCKET must be set for s3 token storage")
		}
		storageField["bucket_name"] = cfg.Bucket
		store, err = aws.NewStore(ctx, cfg.Bucket)
	case "", "memory":
		store = memory.NewStore()
		storageField["storage_type"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown token storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s token store: %w", cfg.Type, err)
	}

	logrus.WithFields(storageField).Info("Use token storage")
	return store, nil
}

// CloseStore releases the resources held by store, if it holds any.
func CloseStore(store core.TokenStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
