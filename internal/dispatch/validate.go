package dispatch

import (
	"fmt"

	"iotagateway/internal/apperrors"
)

// validate checks args against schema: every required field must be
// present, and every present field (required or optional) must match its
// declared semantic type. Unknown fields are ignored — the schema is a
// minimum, not a closed record.
func validate(schema Schema, args map[string]interface{}) error {
	for _, f := range schema.Required {
		v, ok := args[f.Name]
		if !ok || v == nil {
			return apperrors.NewValidation(f.Name, "required field is missing")
		}
		if err := checkType(f, v); err != nil {
			return err
		}
	}
	for _, f := range schema.Optional {
		v, ok := args[f.Name]
		if !ok || v == nil {
			continue
		}
		if err := checkType(f, v); err != nil {
			return err
		}
	}
	return nil
}

func checkType(f Field, v interface{}) error {
	ok := false
	switch f.Type {
	case FieldString:
		_, ok = v.(string)
	case FieldNumber:
		switch v.(type) {
		case float64, float32, int, int64, uint64:
			ok = true
		}
	case FieldBool:
		_, ok = v.(bool)
	case FieldStringArray:
		switch vv := v.(type) {
		case []string:
			ok = true
		case []interface{}:
			ok = true
			for _, e := range vv {
				if _, isStr := e.(string); !isStr {
					ok = false
					break
				}
			}
		}
	case FieldJSONArray:
		_, ok = v.([]interface{})
	}
	if !ok {
		return apperrors.NewValidation(f.Name, fmt.Sprintf("has the wrong type for this field"))
	}
	return nil
}
