package pricing

import (
	"encoding/json"

	"github.com/princinho/climaquote/models"
)

// PayInFull is the FinancingIndex sentinel for "no financing plan".
const PayInFull = -1

// Selection is the ephemeral choice a visitor makes while configuring a unit.
// Extras never hold zero quantities: reaching zero removes the entry.
type Selection struct {
	OptionID       string         `json:"optionId"`
	KitID          string         `json:"kitId"`
	Extras         map[string]int `json:"extras,omitempty"`
	FinancingIndex int            `json:"financingIndex"`
}

// UnmarshalJSON treats a missing or null financingIndex as PayInFull.
func (s *Selection) UnmarshalJSON(data []byte) error {
	type plain Selection
	out := plain{FinancingIndex: PayInFull}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = Selection(out)
	return nil
}

// NewSelection preselects the first option and kit, paid in full.
func NewSelection(p models.Product) Selection {
	s := Selection{FinancingIndex: PayInFull}
	if len(p.PricingOptions) > 0 {
		s.OptionID = p.PricingOptions[0].ID
	}
	if len(p.InstallationKits) > 0 {
		s.KitID = p.InstallationKits[0].ID
	}
	return s
}

// SetExtra stores qty for id; non-positive quantities delete the entry.
func (s *Selection) SetExtra(id string, qty int) {
	if qty <= 0 {
		delete(s.Extras, id)
		return
	}
	if s.Extras == nil {
		s.Extras = make(map[string]int)
	}
	s.Extras[id] = qty
}

func (s *Selection) Increment(id string) { s.SetExtra(id, s.Extras[id]+1) }

func (s *Selection) Decrement(id string) { s.SetExtra(id, s.Extras[id]-1) }

// Normalize drops zero and negative extra quantities, e.g. after decoding
// a selection sent by a client.
func (s *Selection) Normalize() {
	for id, qty := range s.Extras {
		if qty <= 0 {
			delete(s.Extras, id)
		}
	}
	if len(s.Extras) == 0 {
		s.Extras = nil
	}
}

func (s Selection) Clone() Selection {
	out := s
	if s.Extras != nil {
		out.Extras = make(map[string]int, len(s.Extras))
		for k, v := range s.Extras {
			out.Extras[k] = v
		}
	}
	return out
}
