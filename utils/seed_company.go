package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/models"
)

// DefaultCompany is stored the first time the service starts so documents
// always have a letterhead.
func DefaultCompany(now time.Time) models.CompanyInfo {
	return models.CompanyInfo{
		ID:           models.CompanyInfoID,
		Name:         "Climatización",
		PrimaryColor: "#143C78",
		Addresses:    []models.NamedAddress{},
		LegalTerms: models.LocalizedText{
			"es": "Presupuesto válido durante 30 días. Precios con IVA incluido.",
			"en": "Quote valid for 30 days. Prices include VAT.",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeedCompany inserts the company settings singleton only if it doesn't
// exist.
func SeedCompany(ctx context.Context, col database.Collection[models.CompanyInfo], log zerolog.Logger) error {
	inserted, err := col.InsertIfMissing(ctx, models.CompanyInfoID, DefaultCompany(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("seed company settings: %w", err)
	}

	if inserted {
		log.Info().Msg("company settings seeded")
	} else {
		log.Debug().Msg("company settings already exist")
	}
	return nil
}

// LoadCompany returns the stored company settings, or DefaultCompany when the
// singleton has not been saved yet.
func LoadCompany(ctx context.Context, col database.Collection[models.CompanyInfo], now time.Time) (models.CompanyInfo, error) {
	info, err := col.Get(ctx, models.CompanyInfoID)
	if errors.Is(err, database.ErrNotFound) {
		return DefaultCompany(now), nil
	}
	if err != nil {
		return models.CompanyInfo{}, fmt.Errorf("load company settings: %w", err)
	}
	return info, nil
}
