/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"

	"github.com/suparena/kvmodels/errors"
)

// NullToken is the reserved encoding of the absence sentinel. It contains a
// NUL byte, which no valid encoded value of any kind may contain, so it never
// collides with real data.
const NullToken = "\x00null\x00"

// Encode serializes a normalized value to the store's flat string form.
// A nil value encodes to NullToken regardless of the null flag; enforcing
// nullability is Validate's job so loads can still observe bad data.
func (f Field) Encode(v any) (string, error) {
	if v == nil {
		return NullToken, nil
	}
	switch f.Kind {
	case KindString:
		return v.(string), nil
	case KindNumber:
		switch n := v.(type) {
		case int64:
			return strconv.FormatInt(n, 10), nil
		case float64:
			s := strconv.FormatFloat(n, 'f', -1, 64)
			// Integral floats must stay recognizable as floats.
			if !strings.Contains(s, ".") {
				s += ".0"
			}
			return s, nil
		}
	case KindBool:
		if v.(bool) {
			return "1", nil
		}
		return "0", nil
	case KindDecimal:
		return v.(decimal.Decimal).String(), nil
	case KindJSON, KindList, KindMap:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal %s field %q: %w", f.Kind, f.Name, err)
		}
		return string(data), nil
	case KindDate:
		return strfmt.Date(v.(time.Time)).String(), nil
	case KindDateTime:
		// Forced UTC and fixed millisecond width keep lexical order equal to
		// chronological order, which range filters rely on.
		return strfmt.DateTime(v.(time.Time).UTC().Truncate(time.Millisecond)).String(), nil
	case KindRef:
		return v.(string), nil
	case KindManyMany:
		data, err := json.Marshal(v.([]string))
		if err != nil {
			return "", fmt.Errorf("marshal %s field %q: %w", f.Kind, f.Name, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("encode: unsupported value %T for %s field %q", v, f.Kind, f.Name)
}

// Decode parses a stored string back to the field's language-native value.
// The null token decodes to nil only for nullable fields; on a non-nullable
// field it is malformed data and yields a DecodeError.
func (f Field) Decode(s string) (any, error) {
	if s == NullToken {
		if !f.Null {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, fmt.Errorf("null token on non-nullable field"))
		}
		return nil, nil
	}
	switch f.Kind {
	case KindString:
		return s, nil
	case KindNumber:
		if strings.ContainsAny(s, ".eE") {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
			}
			return n, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		return n, nil
	case KindBool:
		switch s {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, fmt.Errorf("want 0 or 1"))
	case KindDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		return d, nil
	case KindJSON:
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		return v, nil
	case KindList:
		var l []any
		if err := json.Unmarshal([]byte(s), &l); err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		if l == nil {
			l = []any{}
		}
		return l, nil
	case KindMap:
		var m map[string]any
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		if m == nil {
			m = map[string]any{}
		}
		return m, nil
	case KindDate:
		var d strfmt.Date
		if err := d.UnmarshalText([]byte(s)); err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		return time.Time(d).UTC(), nil
	case KindDateTime:
		dt, err := strfmt.ParseDateTime(s)
		if err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		return time.Time(dt).UTC(), nil
	case KindRef:
		return s, nil
	case KindManyMany:
		var ids []string
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, err)
		}
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	}
	return nil, errors.NewDecodeError(f.Name, string(f.Kind), s, fmt.Errorf("unknown field kind"))
}
