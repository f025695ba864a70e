package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuoteStatus string

const (
	QuoteStatusPending QuoteStatus = "pending"
	QuoteStatusSigned  QuoteStatus = "signed"
)

type ClientData struct {
	Name       string `bson:"name" json:"name" validate:"required"`
	Surname    string `bson:"surname,omitempty" json:"surname,omitempty"`
	Email      string `bson:"email" json:"email" validate:"required,email"`
	Phone      string `bson:"phone" json:"phone" validate:"required"`
	Address    string `bson:"address" json:"address" validate:"required"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode" validate:"required"`
	WorkOrder  string `bson:"workOrder,omitempty" json:"workOrder,omitempty"`
}

// FullName joins name and surname.
func (c ClientData) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}

type QuoteAttachment struct {
	Kind      string `bson:"kind" json:"kind"`
	PublicURL string `bson:"publicUrl" json:"publicUrl"`
	FileName  string `bson:"fileName" json:"fileName"`
	MimeType  string `bson:"mimeType" json:"mimeType"`
	SizeBytes int64  `bson:"sizeBytes" json:"sizeBytes"`
}

// QuoteLine is a frozen, already-localized line of the offer.
type QuoteLine struct {
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`
	Amount    float64 `bson:"amount" json:"amount"`
}

// Quote is a historical record: its text fields are captured when the quote
// is built and never re-derived from the product afterwards.
type Quote struct {
	ID            bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProductID     *bson.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	Brand         string         `bson:"brand" json:"brand"`
	Model         string         `bson:"model" json:"model"`
	Option        QuoteLine      `bson:"option" json:"option"`
	Kit           QuoteLine      `bson:"kit" json:"kit"`
	Extras        []QuoteLine    `bson:"extras" json:"extras"`
	Price         float64        `bson:"price" json:"price"`
	FinancedTotal float64        `bson:"financedTotal" json:"financedTotal"`
	FinancingText string         `bson:"financingText" json:"financingText"`
	Client        ClientData     `bson:"client" json:"client"`
	Language      string         `bson:"language" json:"language"`

	Signature   string            `bson:"signature,omitempty" json:"signature,omitempty"`
	Attachments []QuoteAttachment `bson:"attachments,omitempty" json:"attachments,omitempty"`

	DocumentURL      string      `bson:"documentUrl,omitempty" json:"documentUrl,omitempty"`
	NotificationSent bool        `bson:"notificationSent" json:"notificationSent"`
	Status           QuoteStatus `bson:"status" json:"status"`
	IsDeleted        bool        `bson:"isDeleted" json:"isDeleted"`

	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	SignedAt  *time.Time `bson:"signedAt,omitempty" json:"signedAt,omitempty"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}
