// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package validator

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONValidator checks JSON renderings of converted documents
type JSONValidator struct {
	StrictMode bool
	// RequiredFields must be present at the top level in strict mode
	RequiredFields []string
}

// NewJSONValidator creates a new JSON validator
func NewJSONValidator(strictMode bool) *JSONValidator {
	return &JSONValidator{
		StrictMode: strictMode,
	}
}

// Validate checks that data is a JSON document that survives a round trip
func (v *JSONValidator) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("JSON data is empty")
	}

	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid JSON syntax: %w", err)
	}

	if !v.StrictMode {
		return nil
	}

	marshaled, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("JSON marshal failed during validation: %w", err)
	}

	var roundTrip interface{}
	if err := json.Unmarshal(marshaled, &roundTrip); err != nil {
		return fmt.Errorf("JSON round-trip validation failed: %w", err)
	}
	if !reflect.DeepEqual(obj, roundTrip) {
		return fmt.Errorf("JSON round-trip produced different structure")
	}

	return checkRequiredFields("JSON", obj, v.RequiredFields)
}

// MarshalAndValidate renders data as indented JSON and validates it
func (v *JSONValidator) MarshalAndValidate(data interface{}) ([]byte, error) {
	out, err := v.Marshal(data)
	if err != nil {
		return nil, err
	}

	if err := v.Validate(out); err != nil {
		return nil, err
	}

	return out, nil
}

// Marshal serializes data like MarshalAndValidate, without the checks
func (v *JSONValidator) Marshal(data interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("JSON marshal failed: %w", err)
	}
	return append(out, '\n'), nil
}

// checkRequiredFields reports the first of fields missing from a decoded
// top-level object
func checkRequiredFields(format string, obj interface{}, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	m, ok := obj.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%s document is not an object", format)
	}
	for _, field := range fields {
		if _, ok := m[field]; !ok {
			return fmt.Errorf("%s document has no %q field", format, field)
		}
	}
	return nil
}
