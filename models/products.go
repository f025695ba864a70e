package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDraft    ProductStatus = "draft"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDraft:
		return true
	}
	return false
}

// PricingOption is one purchasable variant of a unit (e.g. capacity).
type PricingOption struct {
	ID    string        `bson:"id" json:"id"`
	Name  LocalizedText `bson:"name" json:"name"`
	Price float64       `bson:"price" json:"price"`
}

type InstallationKit struct {
	ID    string        `bson:"id" json:"id"`
	Name  LocalizedText `bson:"name" json:"name"`
	Price float64       `bson:"price" json:"price"`
}

type Extra struct {
	ID    string        `bson:"id" json:"id"`
	Name  LocalizedText `bson:"name" json:"name"`
	Price float64       `bson:"price" json:"price"`
}

// FinancingPlan spreads the total over Months. Coefficient takes precedence
// over Commission when both are set.
type FinancingPlan struct {
	Label             LocalizedText `bson:"label" json:"label"`
	Months            int           `bson:"months" json:"months"`
	Commission        *float64      `bson:"commission,omitempty" json:"commission,omitempty"`
	Coefficient       *float64      `bson:"coefficient,omitempty" json:"coefficient,omitempty"`
	RequiresDocuments bool          `bson:"requiresDocuments" json:"requiresDocuments"`
}

type Product struct {
	ID               bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Brand            string            `bson:"brand" json:"brand"`
	Model            string            `bson:"model" json:"model"`
	Type             string            `bson:"type" json:"type"`
	Description      LocalizedText     `bson:"description,omitempty" json:"description,omitempty"`
	Features         []LocalizedText   `bson:"features" json:"features"`
	ImageURL         string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	DatasheetURL     string            `bson:"datasheetUrl,omitempty" json:"datasheetUrl,omitempty"`
	PricingOptions   []PricingOption   `bson:"pricingOptions" json:"pricingOptions"`
	InstallationKits []InstallationKit `bson:"installationKits" json:"installationKits"`
	Extras           []Extra           `bson:"extras" json:"extras"`
	FinancingPlans   []FinancingPlan   `bson:"financingPlans" json:"financingPlans"`
	Status           ProductStatus     `bson:"status" json:"status"`
	IsDeleted        bool              `bson:"isDeleted" json:"isDeleted"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// ProductDraft is a best-effort partial product, typically produced by the
// document extractor. Every field is optional and must be reviewed.
type ProductDraft struct {
	Brand            string            `json:"brand,omitempty"`
	Model            string            `json:"model,omitempty"`
	Type             string            `json:"type,omitempty"`
	Description      LocalizedText     `json:"description,omitempty"`
	Features         []LocalizedText   `json:"features,omitempty"`
	PricingOptions   []PricingOption   `json:"pricingOptions,omitempty"`
	InstallationKits []InstallationKit `json:"installationKits,omitempty"`
	Extras           []Extra           `json:"extras,omitempty"`
}
