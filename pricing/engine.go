// Package pricing computes totals and financed installments for a product
// configuration. Everything here is pure: no I/O and no caching.
package pricing

import (
	"sort"

	"github.com/princinho/climaquote/models"
)

type ExtraLine struct {
	Extra    models.Extra `json:"extra"`
	Quantity int          `json:"quantity"`
	Amount   float64      `json:"amount"`
}

type Financing struct {
	Plan          *models.FinancingPlan `json:"plan,omitempty"`
	Months        int                   `json:"months"`
	FinancedTotal float64               `json:"financedTotal"`
	Installment   float64               `json:"installment"`
}

// PayingInFull reports whether no plan was applied.
func (f Financing) PayingInFull() bool { return f.Plan == nil }

type Breakdown struct {
	Option      *models.PricingOption   `json:"option,omitempty"`
	Kit         *models.InstallationKit `json:"kit,omitempty"`
	Extras      []ExtraLine             `json:"extras"`
	OptionPrice float64                 `json:"optionPrice"`
	KitPrice    float64                 `json:"kitPrice"`
	ExtrasTotal float64                 `json:"extrasTotal"`
	Total       float64                 `json:"total"`
	Financing   Financing               `json:"financing"`
}

// ResolveOption returns the selected option, or the first one when id is
// unknown. nil only when the product has no options.
func ResolveOption(p models.Product, id string) *models.PricingOption {
	for i := range p.PricingOptions {
		if p.PricingOptions[i].ID == id {
			return &p.PricingOptions[i]
		}
	}
	if len(p.PricingOptions) > 0 {
		return &p.PricingOptions[0]
	}
	return nil
}

// ResolveKit follows the same fallback rule as ResolveOption.
func ResolveKit(p models.Product, id string) *models.InstallationKit {
	for i := range p.InstallationKits {
		if p.InstallationKits[i].ID == id {
			return &p.InstallationKits[i]
		}
	}
	if len(p.InstallationKits) > 0 {
		return &p.InstallationKits[0]
	}
	return nil
}

// ResolvePlan returns the plan at index, nil for PayInFull or out of range.
func ResolvePlan(p models.Product, index int) *models.FinancingPlan {
	if index < 0 || index >= len(p.FinancingPlans) {
		return nil
	}
	return &p.FinancingPlans[index]
}

// ComputeTotal prices option + kit + extras. Unknown extra ids are ignored.
// Extra lines follow the product's extra order.
func ComputeTotal(p models.Product, s Selection) Breakdown {
	b := Breakdown{Extras: []ExtraLine{}}
	if opt := ResolveOption(p, s.OptionID); opt != nil {
		o := *opt
		b.Option = &o
		b.OptionPrice = o.Price
	}
	if kit := ResolveKit(p, s.KitID); kit != nil {
		k := *kit
		b.Kit = &k
		b.KitPrice = k.Price
	}
	for _, e := range p.Extras {
		qty, ok := s.Extras[e.ID]
		if !ok || qty <= 0 {
			continue
		}
		amount := e.Price * float64(qty)
		b.Extras = append(b.Extras, ExtraLine{Extra: e, Quantity: qty, Amount: amount})
		b.ExtrasTotal += amount
	}
	b.Total = b.OptionPrice + b.KitPrice + b.ExtrasTotal
	b.Financing = ComputeFinancing(b.Total, nil)
	return b
}

// ComputeFinancing applies plan to total. A nil plan means pay in full.
func ComputeFinancing(total float64, plan *models.FinancingPlan) Financing {
	if plan == nil {
		return Financing{FinancedTotal: total}
	}
	financed := total
	switch {
	case plan.Coefficient != nil:
		financed = total * *plan.Coefficient
	case plan.Commission != nil:
		financed = total * (1 + *plan.Commission/100)
	}
	months := plan.Months
	installment := financed
	if months > 0 {
		installment = financed / float64(months)
	} else {
		months = 1
	}
	p := *plan
	return Financing{Plan: &p, Months: months, FinancedTotal: financed, Installment: installment}
}

// Compute prices the selection and applies its financing plan.
func Compute(p models.Product, s Selection) Breakdown {
	b := ComputeTotal(p, s)
	b.Financing = ComputeFinancing(b.Total, ResolvePlan(p, s.FinancingIndex))
	return b
}

// UnknownExtras lists selected extra ids the product does not define.
func UnknownExtras(p models.Product, s Selection) []string {
	known := make(map[string]struct{}, len(p.Extras))
	for _, e := range p.Extras {
		known[e.ID] = struct{}{}
	}
	var out []string
	for id := range s.Extras {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
