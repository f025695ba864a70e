package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
)

func TestBuildFreezesLocalizedNames(t *testing.T) {
	p := testProduct()
	s := pricing.NewSelection(p)
	s.SetExtra("e1", 3)
	s.FinancingIndex = 0

	q := Build(p, pricing.Compute(p, s), client(), "en-GB")

	assert.Equal(t, "Daikin", q.Brand)
	assert.Equal(t, "3.5 kW", q.Option.Name)
	assert.Equal(t, "Básico", q.Kit.Name)
	require.Len(t, q.Extras, 1)
	assert.Equal(t, models.QuoteLine{Name: "Metro de tubo", Quantity: 3, UnitPrice: 50, Amount: 150}, q.Extras[0])
	assert.Equal(t, 1350.0, q.Price)
	assert.InDelta(t, 1417.5, q.FinancedTotal, 1e-9)
	assert.Equal(t, "12 meses · 12 × 118 €", q.FinancingText)
	assert.Nil(t, q.ProductID)
	assert.Equal(t, "en-GB", q.Language)
}

func TestFinancingDescription(t *testing.T) {
	assert.Equal(t, "Pago al contado", FinancingDescription(pricing.ComputeFinancing(1200, nil), "es"))
	assert.Equal(t, "Pay in full", FinancingDescription(pricing.ComputeFinancing(1200, nil), "en"))

	plan := &models.FinancingPlan{Label: models.LocalizedText{"es": "12 meses", "en": "12 months"}, Months: 12, Coefficient: coef(1.05)}
	assert.Equal(t, "12 months · 12 × 105 €", FinancingDescription(pricing.ComputeFinancing(1200, plan), "en"))
}

func TestConfirmIsASnapshot(t *testing.T) {
	c := Configure(testProduct(), "")
	assert.Equal(t, models.BaseLanguage, c.Language())
	c.Increment("e1")
	fin := c.Confirm()

	c.Increment("e1")
	c.SelectFinancing(0)

	assert.Equal(t, 1250.0, fin.Breakdown().Total)
	assert.Equal(t, 1, fin.Selection().Extras["e1"])
	assert.Nil(t, fin.Plan())
	assert.False(t, fin.RequiresDocuments())
	assert.Equal(t, 1300.0, c.Breakdown().Total)

	c.Decrement("e1")
	c.Decrement("e1")
	_, ok := c.Selection().Extras["e1"]
	assert.False(t, ok)
}

func TestApplyNormalizesSelection(t *testing.T) {
	c := Configure(testProduct(), "es")
	c.Apply(pricing.Selection{OptionID: "o1", KitID: "k1", Extras: map[string]int{"e1": 0}, FinancingIndex: 1})

	fin := c.Confirm()
	assert.Empty(t, fin.Selection().Extras)
	assert.True(t, fin.RequiresDocuments())
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateClient(models.ClientData{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Fields["name"])
	assert.Equal(t, "required", verr.Fields["postalCode"])
	assert.NotContains(t, verr.Fields, "surname")
	assert.Contains(t, verr.Error(), "address: required")

	assert.NoError(t, ValidateClient(NormalizeClient(client())))
}
