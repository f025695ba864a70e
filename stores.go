package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/princinho/climaquote/config"
	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/models"
)

type stores struct {
	products database.Collection[models.Product]
	quotes   database.Collection[models.Quote]
	company  database.Collection[models.CompanyInfo]
	close    func(context.Context) error
}

// openStores connects the record store selected by cfg.Database.Driver.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*stores, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("using the in-memory record store, data is lost on restart")
		return &stores{
			products: database.NewMemoryCollection[models.Product](),
			quotes:   database.NewMemoryCollection[models.Quote](),
			company:  database.NewMemoryCollection[models.CompanyInfo](),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, err := database.Connect(ctx, cfg.URI, cfg.Timeout, log)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Name)

	idxCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return &stores{
		products: database.NewMongoCollection[models.Product](db, database.ProductsCollection),
		quotes:   database.NewMongoCollection[models.Quote](db, database.QuotesCollection),
		company:  database.NewMongoCollection[models.CompanyInfo](db, database.SettingsCollection),
		close:    client.Disconnect,
	}, nil
}
