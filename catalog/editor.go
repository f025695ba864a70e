package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/climaquote/models"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// CopyMarker is appended to the model of a duplicated product.
const CopyMarker = " (copia)"

// Collection names accepted by the admin editor.
const (
	CollectionFeatures  = "features"
	CollectionPricing   = "pricing"
	CollectionKits      = "kits"
	CollectionExtras    = "extras"
	CollectionFinancing = "financing"
)

func Append[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

// EditAt applies fn to the element at i in place of a copy of items.
func EditAt[T any](items []T, i int, fn func(*T)) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("edit %d of %d: %w", i, len(items), ErrIndexOutOfRange)
	}
	out := make([]T, len(items))
	copy(out, items)
	fn(&out[i])
	return out, nil
}

func RemoveAt[T any](items []T, i int) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("remove %d of %d: %w", i, len(items), ErrIndexOutOfRange)
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}

func NewEntryID() string { return uuid.NewString() }

// AppendDefault adds an empty entry to the named collection.
func AppendDefault(p *models.Product, collection string) error {
	switch collection {
	case CollectionFeatures:
		p.Features = Append(p.Features, models.LocalizedText{models.BaseLanguage: ""})
	case CollectionPricing:
		p.PricingOptions = Append(p.PricingOptions, models.PricingOption{ID: NewEntryID(), Name: models.LocalizedText{}})
	case CollectionKits:
		p.InstallationKits = Append(p.InstallationKits, models.InstallationKit{ID: NewEntryID(), Name: models.LocalizedText{}})
	case CollectionExtras:
		p.Extras = Append(p.Extras, models.Extra{ID: NewEntryID(), Name: models.LocalizedText{}})
	case CollectionFinancing:
		p.FinancingPlans = Append(p.FinancingPlans, models.FinancingPlan{Label: models.LocalizedText{}, Months: 12})
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	return nil
}

// RemoveFrom drops the entry at i from the named collection.
func RemoveFrom(p *models.Product, collection string, i int) error {
	var err error
	switch collection {
	case CollectionFeatures:
		p.Features, err = orKeep(p.Features)(RemoveAt(p.Features, i))
	case CollectionPricing:
		p.PricingOptions, err = orKeep(p.PricingOptions)(RemoveAt(p.PricingOptions, i))
	case CollectionKits:
		p.InstallationKits, err = orKeep(p.InstallationKits)(RemoveAt(p.InstallationKits, i))
	case CollectionExtras:
		p.Extras, err = orKeep(p.Extras)(RemoveAt(p.Extras, i))
	case CollectionFinancing:
		p.FinancingPlans, err = orKeep(p.FinancingPlans)(RemoveAt(p.FinancingPlans, i))
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	return err
}

func orKeep[T any](prev []T) func([]T, error) ([]T, error) {
	return func(next []T, err error) ([]T, error) {
		if err != nil {
			return prev, err
		}
		return next, nil
	}
}

// EntryPatch carries the editable fields of a nested entry. Nil fields are
// left untouched.
type EntryPatch struct {
	Name              models.LocalizedText `json:"name,omitempty"`
	Price             *float64             `json:"price,omitempty"`
	Label             models.LocalizedText `json:"label,omitempty"`
	Months            *int                 `json:"months,omitempty"`
	Commission        *float64             `json:"commission,omitempty"`
	Coefficient       *float64             `json:"coefficient,omitempty"`
	ClearCommission   bool                 `json:"clearCommission,omitempty"`
	ClearCoefficient  bool                 `json:"clearCoefficient,omitempty"`
	RequiresDocuments *bool                `json:"requiresDocuments,omitempty"`
	Text              models.LocalizedText `json:"text,omitempty"`
}

// EditIn applies patch to the entry at i of the named collection.
func EditIn(p *models.Product, collection string, i int, patch EntryPatch) error {
	var err error
	switch collection {
	case CollectionFeatures:
		p.Features, err = orKeep(p.Features)(EditAt(p.Features, i, func(f *models.LocalizedText) {
			if patch.Text != nil {
				*f = mergeText(*f, patch.Text)
			}
		}))
	case CollectionPricing:
		p.PricingOptions, err = orKeep(p.PricingOptions)(EditAt(p.PricingOptions, i, func(o *models.PricingOption) {
			o.Name = mergeText(o.Name, patch.Name)
			if patch.Price != nil {
				o.Price = *patch.Price
			}
		}))
	case CollectionKits:
		p.InstallationKits, err = orKeep(p.InstallationKits)(EditAt(p.InstallationKits, i, func(k *models.InstallationKit) {
			k.Name = mergeText(k.Name, patch.Name)
			if patch.Price != nil {
				k.Price = *patch.Price
			}
		}))
	case CollectionExtras:
		p.Extras, err = orKeep(p.Extras)(EditAt(p.Extras, i, func(e *models.Extra) {
			e.Name = mergeText(e.Name, patch.Name)
			if patch.Price != nil {
				e.Price = *patch.Price
			}
		}))
	case CollectionFinancing:
		p.FinancingPlans, err = orKeep(p.FinancingPlans)(EditAt(p.FinancingPlans, i, func(f *models.FinancingPlan) {
			f.Label = mergeText(f.Label, patch.Label)
			if patch.Months != nil {
				f.Months = *patch.Months
			}
			if patch.Commission != nil {
				f.Commission = patch.Commission
			}
			if patch.ClearCommission {
				f.Commission = nil
			}
			if patch.Coefficient != nil {
				f.Coefficient = patch.Coefficient
			}
			if patch.ClearCoefficient {
				f.Coefficient = nil
			}
			if patch.RequiresDocuments != nil {
				f.RequiresDocuments = *patch.RequiresDocuments
			}
		}))
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	return err
}

func mergeText(dst, src models.LocalizedText) models.LocalizedText {
	if src == nil {
		return dst
	}
	out := dst.Clone()
	if out == nil {
		out = models.LocalizedText{}
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Duplicate copies p as a fresh draft. Nested entries get new ids.
func Duplicate(p models.Product, now time.Time) models.Product {
	d := p
	d.ID = bson.ObjectID{}
	d.Model = p.Model + CopyMarker
	d.Status = models.ProductStatusDraft
	d.IsDeleted = false
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Description = p.Description.Clone()

	d.Features = make([]models.LocalizedText, len(p.Features))
	for i, f := range p.Features {
		d.Features[i] = f.Clone()
	}
	d.PricingOptions = make([]models.PricingOption, len(p.PricingOptions))
	for i, o := range p.PricingOptions {
		d.PricingOptions[i] = models.PricingOption{ID: NewEntryID(), Name: o.Name.Clone(), Price: o.Price}
	}
	d.InstallationKits = make([]models.InstallationKit, len(p.InstallationKits))
	for i, k := range p.InstallationKits {
		d.InstallationKits[i] = models.InstallationKit{ID: NewEntryID(), Name: k.Name.Clone(), Price: k.Price}
	}
	d.Extras = make([]models.Extra, len(p.Extras))
	for i, e := range p.Extras {
		d.Extras[i] = models.Extra{ID: NewEntryID(), Name: e.Name.Clone(), Price: e.Price}
	}
	d.FinancingPlans = make([]models.FinancingPlan, len(p.FinancingPlans))
	for i, f := range p.FinancingPlans {
		plan := f
		plan.Label = f.Label.Clone()
		plan.Commission = clonePtr(f.Commission)
		plan.Coefficient = clonePtr(f.Coefficient)
		d.FinancingPlans[i] = plan
	}
	return d
}

// EnsureEntryIDs fills in ids missing from nested entries of a new product.
func EnsureEntryIDs(p *models.Product) {
	for i := range p.PricingOptions {
		if p.PricingOptions[i].ID == "" {
			p.PricingOptions[i].ID = NewEntryID()
		}
	}
	for i := range p.InstallationKits {
		if p.InstallationKits[i].ID == "" {
			p.InstallationKits[i].ID = NewEntryID()
		}
	}
	for i := range p.Extras {
		if p.Extras[i].ID == "" {
			p.Extras[i].ID = NewEntryID()
		}
	}
}

func clonePtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
