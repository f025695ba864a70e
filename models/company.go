package models

import "time"

// CompanyInfoID is the fixed identity of the company settings singleton.
const CompanyInfoID = "company"

type NamedAddress struct {
	Label   string `bson:"label" json:"label"`
	Address string `bson:"address" json:"address"`
}

type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	WhatsApp  string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
}

type CompanyInfo struct {
	ID           string         `bson:"_id" json:"id"`
	Name         string         `bson:"name" json:"name"`
	LegalName    string         `bson:"legalName,omitempty" json:"legalName,omitempty"`
	TaxID        string         `bson:"taxId,omitempty" json:"taxId,omitempty"`
	LogoURL      string         `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	PrimaryColor string         `bson:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	Email        string         `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Website      string         `bson:"website,omitempty" json:"website,omitempty"`
	Social       SocialLinks    `bson:"social" json:"social"`
	Addresses    []NamedAddress `bson:"addresses" json:"addresses"`
	LegalTerms   LocalizedText  `bson:"legalTerms,omitempty" json:"legalTerms,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}
