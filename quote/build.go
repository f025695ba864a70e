// Package quote builds quote records and drives them from configuration to
// signature.
package quote

import (
	"fmt"

	"github.com/princinho/climaquote/i18n"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
)

// Build freezes the priced configuration into a quote record. Names are
// resolved in lang now and never re-derived from the product afterwards.
func Build(p models.Product, b pricing.Breakdown, client models.ClientData, lang string) models.Quote {
	q := models.Quote{
		Brand:         p.Brand,
		Model:         p.Model,
		Extras:        make([]models.QuoteLine, 0, len(b.Extras)),
		Price:         b.Total,
		FinancedTotal: b.Financing.FinancedTotal,
		FinancingText: FinancingDescription(b.Financing, lang),
		Client:        client,
		Language:      lang,
	}
	if !p.ID.IsZero() {
		id := p.ID
		q.ProductID = &id
	}
	if b.Option != nil {
		q.Option = models.QuoteLine{Name: i18n.Resolve(b.Option.Name, lang), Quantity: 1, UnitPrice: b.OptionPrice, Amount: b.OptionPrice}
	}
	if b.Kit != nil {
		q.Kit = models.QuoteLine{Name: i18n.Resolve(b.Kit.Name, lang), Quantity: 1, UnitPrice: b.KitPrice, Amount: b.KitPrice}
	}
	for _, e := range b.Extras {
		q.Extras = append(q.Extras, models.QuoteLine{
			Name:      i18n.Resolve(e.Extra.Name, lang),
			Quantity:  e.Quantity,
			UnitPrice: e.Extra.Price,
			Amount:    e.Amount,
		})
	}
	return q
}

// FinancingDescription reads "<plan> · <months> × <installment>", or the
// pay-in-full label.
func FinancingDescription(f pricing.Financing, lang string) string {
	if f.PayingInFull() {
		return i18n.Label("quote.pay_in_full", lang)
	}
	label := i18n.Resolve(f.Plan.Label, lang)
	if label == "" {
		label = i18n.Label("quote.financing", lang)
	}
	return fmt.Sprintf("%s · %d × %s", label, f.Months, i18n.FormatMoney(f.Installment, lang))
}
