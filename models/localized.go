package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BaseLanguage is the language every LocalizedText is expected to carry.
const BaseLanguage = "es"

// LocalizedText maps a language code to a display string.
type LocalizedText map[string]string

// UnmarshalJSON accepts the legacy plain-string form and stores it under BaseLanguage.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = LocalizedText{BaseLanguage: plain}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("localized text: %w", err)
	}
	*t = LocalizedText(m)
	return nil
}

// UnmarshalBSONValue reads stored records, including ones saved before texts
// were localized, where the value is a plain string.
func (t *LocalizedText) UnmarshalBSONValue(typ byte, data []byte) error {
	raw := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch raw.Type {
	case bson.TypeNull, bson.TypeUndefined:
		*t = nil
		return nil
	case bson.TypeString:
		*t = LocalizedText{BaseLanguage: raw.StringValue()}
		return nil
	case bson.TypeEmbeddedDocument:
		var m map[string]string
		if err := raw.Unmarshal(&m); err != nil {
			return fmt.Errorf("localized text: %w", err)
		}
		*t = LocalizedText(m)
		return nil
	default:
		return fmt.Errorf("localized text: unexpected bson type %s", raw.Type)
	}
}

// Clone returns an independent copy.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
