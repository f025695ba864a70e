package dto

import "github.com/princinho/climaquote/models"

type UpdateCompanyDTO struct {
	Name         string                `json:"name" binding:"required"`
	LegalName    string                `json:"legalName"`
	TaxID        string                `json:"taxId"`
	LogoURL      string                `json:"logoUrl"`
	PrimaryColor string                `json:"primaryColor" binding:"omitempty,hexcolor"`
	Email        string                `json:"email" binding:"omitempty,email"`
	Phone        string                `json:"phone"`
	Website      string                `json:"website"`
	Social       models.SocialLinks    `json:"social"`
	Addresses    []models.NamedAddress `json:"addresses"`
	LegalTerms   models.LocalizedText  `json:"legalTerms"`
}
