/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/fields"
)

// yamlFile is the on-disk shape of a model definition file:
//
//	models:
//	  - name: BotSession
//	    fields:
//	      - name: session_token
//	        kind: string
//	        "null": false
//	      - name: created
//	        kind: datetime
//	  - name: Task
//	    fields:
//	      - name: bot_session
//	        kind: ref
//	        model: BotSession
//	      - name: status
//	        kind: string
//	        default: in_work
//	        choices: [in_work, completed, failed_bot]
type yamlFile struct {
	Models []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Null    *bool  `yaml:"null"`
	Default any    `yaml:"default"`
	Choices []any  `yaml:"choices"`
	Model   string `yaml:"model"`
}

var yamlKinds = map[string]fields.Kind{
	"string":     fields.KindString,
	"number":     fields.KindNumber,
	"bool":       fields.KindBool,
	"decimal":    fields.KindDecimal,
	"json":       fields.KindJSON,
	"list":       fields.KindList,
	"map":        fields.KindMap,
	"date":       fields.KindDate,
	"datetime":   fields.KindDateTime,
	"ref":        fields.KindRef,
	"manytomany": fields.KindManyMany,
}

// LoadYAML reads declarative model definitions from r and builds one schema
// per declared model. Defaults declared in YAML are stored raw; they are
// normalized against the field kind at create time, not at load time.
func LoadYAML(r io.Reader) ([]*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read model definitions: %w", err)
	}

	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model definitions: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, errors.NewConfigurationError("models", "no models declared")
	}

	schemas := make([]*Schema, 0, len(file.Models))
	for _, m := range file.Models {
		fs := make([]fields.Field, 0, len(m.Fields))
		for _, yf := range m.Fields {
			kind, ok := yamlKinds[yf.Kind]
			if !ok {
				return nil, errors.NewConfigurationError(yf.Name, fmt.Sprintf("unknown field kind %q", yf.Kind))
			}
			f := fields.Field{
				Name:    yf.Name,
				Kind:    kind,
				Null:    true,
				Default: yf.Default,
				Choices: yf.Choices,
				Model:   yf.Model,
			}
			if yf.Null != nil {
				f.Null = *yf.Null
			}
			fs = append(fs, f)
		}
		s, err := New(m.Name, fs...)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}
