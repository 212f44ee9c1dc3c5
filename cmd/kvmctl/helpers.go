/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/suparena/kvmodels"
)

// printInstance writes one record as indented JSON with the id alongside the
// field values.
func printInstance(inst *kvmodels.Instance) error {
	doc := map[string]any{"id": inst.ID()}
	for k, v := range inst.Values() {
		doc[k] = v
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// parseValues decodes a JSON object of field values from a CLI argument.
func parseValues(arg string) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(arg), &values); err != nil {
		return nil, fmt.Errorf("values must be a JSON object: %w", err)
	}
	return values, nil
}

// parseFilters turns key=value arguments into a filter map. Values are
// decoded as JSON when they parse as JSON, and kept as strings otherwise, so
// status=in_work and count__gte=3 both do the expected thing.
func parseFilters(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	filters := make(map[string]any, len(args))
	for _, arg := range args {
		keyword, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q is not of the form field__operator=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		filters[keyword] = v
	}
	return filters, nil
}
