package repository

import (
	"encoding/json"
	"fmt"
)

// Keys owned by the store. They are stripped on Encode and injected on Decode.
var reservedKeys = []string{"id", "createdAt", "updatedAt"}

// Encode turns a model value into document fields.
func Encode(v interface{}) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	for _, k := range reservedKeys {
		delete(fields, k)
	}
	return fields, nil
}

// Decode fills out from a document, including its id and timestamps.
func Decode(doc *Document, out interface{}) error {
	merged := make(Fields, len(doc.Data)+len(reservedKeys))
	for k, v := range doc.Data {
		merged[k] = v
	}
	merged["id"] = doc.ID
	merged["createdAt"] = doc.CreatedAt
	merged["updatedAt"] = doc.UpdatedAt

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

// Clone copies the top level of fields.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
