package dto

import (
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
)

// CreateQuoteDTO is parsed from the "data" multipart field (JSON). The
// identity document and income proof travel as separate file parts.
type CreateQuoteDTO struct {
	ProductID        string            `json:"productId" binding:"required"`
	Selection        pricing.Selection `json:"selection"`
	Language         string            `json:"language"`
	Client           models.ClientData `json:"client"`
	Signature        string            `json:"signature"`
	ClientNotPresent bool              `json:"clientNotPresent"`
	AcceptedTerms    bool              `json:"acceptedTerms"`
}

type SignQuoteDTO struct {
	Signature string `json:"signature"`
}
