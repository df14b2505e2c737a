// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package validator

import (
	"bytes"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// YAMLValidator checks YAML renderings of converted documents
type YAMLValidator struct {
	StrictMode bool
	// RequiredFields must be present at the top level in strict mode
	RequiredFields []string
}

// NewYAMLValidator creates a new YAML validator
func NewYAMLValidator(strictMode bool) *YAMLValidator {
	return &YAMLValidator{
		StrictMode: strictMode,
	}
}

// Validate checks that data is a YAML document that survives a round trip
func (v *YAMLValidator) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("YAML data is empty")
	}

	var obj interface{}
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid YAML syntax: %w", err)
	}

	if !v.StrictMode {
		return nil
	}

	marshaled, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("YAML marshal failed during validation: %w", err)
	}

	var roundTrip interface{}
	if err := yaml.Unmarshal(marshaled, &roundTrip); err != nil {
		return fmt.Errorf("YAML round-trip validation failed: %w", err)
	}
	if !reflect.DeepEqual(obj, roundTrip) {
		return fmt.Errorf("YAML round-trip produced different structure")
	}

	return checkRequiredFields("YAML", obj, v.RequiredFields)
}

// MarshalAndValidate renders data as YAML with two-space indentation and
// validates it
func (v *YAMLValidator) MarshalAndValidate(data interface{}) ([]byte, error) {
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
func (v *YAMLValidator) Marshal(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("YAML marshal failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("YAML marshal failed: %w", err)
	}
	return buf.Bytes(), nil
}
