package quote

import (
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
)

// Configuring holds a visitor's in-progress selection. The breakdown is
// recomputed on every read.
type Configuring struct {
	product   models.Product
	selection pricing.Selection
	lang      string
}

func Configure(p models.Product, lang string) *Configuring {
	if lang == "" {
		lang = models.BaseLanguage
	}
	return &Configuring{product: p, selection: pricing.NewSelection(p), lang: lang}
}

func (c *Configuring) Product() models.Product      { return c.product }
func (c *Configuring) Language() string             { return c.lang }
func (c *Configuring) Selection() pricing.Selection { return c.selection.Clone() }

func (c *Configuring) SelectOption(id string)      { c.selection.OptionID = id }
func (c *Configuring) SelectKit(id string)         { c.selection.KitID = id }
func (c *Configuring) SelectFinancing(index int)   { c.selection.FinancingIndex = index }
func (c *Configuring) SetExtra(id string, qty int) { c.selection.SetExtra(id, qty) }
func (c *Configuring) Increment(id string)         { c.selection.Increment(id) }
func (c *Configuring) Decrement(id string)         { c.selection.Decrement(id) }

// Apply replaces the whole selection, e.g. one posted by the browser.
func (c *Configuring) Apply(s pricing.Selection) {
	s = s.Clone()
	s.Normalize()
	c.selection = s
}

func (c *Configuring) Breakdown() pricing.Breakdown {
	return pricing.Compute(c.product, c.selection)
}

// Confirm freezes the current selection and its price.
func (c *Configuring) Confirm() Finalizing {
	return Finalizing{
		product:   c.product,
		selection: c.selection.Clone(),
		breakdown: c.Breakdown(),
		lang:      c.lang,
	}
}

// Finalizing is the immutable snapshot submitted for signature. Later
// changes to the Configuring it came from do not affect it.
type Finalizing struct {
	product   models.Product
	selection pricing.Selection
	breakdown pricing.Breakdown
	lang      string
}

func (f Finalizing) Product() models.Product      { return f.product }
func (f Finalizing) Language() string             { return f.lang }
func (f Finalizing) Selection() pricing.Selection { return f.selection.Clone() }

func (f Finalizing) Breakdown() pricing.Breakdown {
	b := f.breakdown
	b.Extras = append([]pricing.ExtraLine(nil), f.breakdown.Extras...)
	return b
}

// Plan is the chosen financing plan, nil when paying in full.
func (f Finalizing) Plan() *models.FinancingPlan {
	return f.breakdown.Financing.Plan
}

func (f Finalizing) RequiresDocuments() bool {
	p := f.Plan()
	return p != nil && p.RequiresDocuments
}

func (f Finalizing) Build(client models.ClientData) models.Quote {
	return Build(f.product, f.breakdown, client, f.lang)
}
