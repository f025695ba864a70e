package dto

import (
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
)

type CreateProductDTO struct {
	Brand            string                   `json:"brand" binding:"required"`
	Model            string                   `json:"model" binding:"required"`
	Type             string                   `json:"type" binding:"required"`
	Description      models.LocalizedText     `json:"description"`
	Features         []models.LocalizedText   `json:"features"`
	ImageURL         string                   `json:"imageUrl"`
	DatasheetURL     string                   `json:"datasheetUrl"`
	PricingOptions   []models.PricingOption   `json:"pricingOptions"`
	InstallationKits []models.InstallationKit `json:"installationKits"`
	Extras           []models.Extra           `json:"extras"`
	FinancingPlans   []models.FinancingPlan   `json:"financingPlans"`
	Status           models.ProductStatus     `json:"status" binding:"omitempty,oneof=active inactive draft"`
}

// UpdateProductDTO fields are optional pointers
type UpdateProductDTO struct {
	Brand            *string                   `json:"brand,omitempty"`
	Model            *string                   `json:"model,omitempty"`
	Type             *string                   `json:"type,omitempty"`
	Description      *models.LocalizedText     `json:"description,omitempty"`
	Features         *[]models.LocalizedText   `json:"features,omitempty"`
	ImageURL         *string                   `json:"imageUrl,omitempty"`
	DatasheetURL     *string                   `json:"datasheetUrl,omitempty"`
	PricingOptions   *[]models.PricingOption   `json:"pricingOptions,omitempty"`
	InstallationKits *[]models.InstallationKit `json:"installationKits,omitempty"`
	Extras           *[]models.Extra           `json:"extras,omitempty"`
	FinancingPlans   *[]models.FinancingPlan   `json:"financingPlans,omitempty"`
	Status           *models.ProductStatus     `json:"status,omitempty" binding:"omitempty,oneof=active inactive draft"`
}

type PriceRequestDTO struct {
	Selection pricing.Selection `json:"selection"`
	Language  string            `json:"language"`
}
