package post

import (
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Item is one input item of the action node.
type Item struct {
	Resource   string         `json:"resource,omitempty"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
}

// nestedCollections are parameter groups whose members are merged into the
// top level before decoding.
var nestedCollections = []string{"additionalFields", "searchFilters"}

// Decode turns an input item into a validated Operation.
func Decode(item Item) (Operation, error) {
	if item.Resource != "" && item.Resource != "post" {
		return nil, fmt.Errorf("unsupported resource %q", item.Resource)
	}

	var op Operation
	switch item.Operation {
	case OpCreate:
		op = &Create{}
	case OpGet:
		op = &Get{}
	case OpSearch:
		op = &Search{}
	default:
		return nil, fmt.Errorf("unsupported operation %q", item.Operation)
	}

	if err := decodeParameters(normalize(item.Parameters), op); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", item.Operation, err)
	}

	// Dereference so callers switch on value types.
	switch o := op.(type) {
	case *Create:
		op = *o
	case *Get:
		op = *o
	case *Search:
		if o.Limit != nil && *o.Limit == 0 {
			o.Limit = nil
		}
		op = *o
	}

	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", item.Operation, err)
	}
	return op, nil
}

// normalize flattens nested collections and drops nil and empty-string
// values, so an empty optional field is indistinguishable from an unset one.
func normalize(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	put := func(k string, v any) {
		if v == nil {
			return
		}
		if s, ok := v.(string); ok && s == "" {
			return
		}
		out[k] = v
	}

	for k, v := range params {
		if isNestedCollection(k) {
			continue
		}
		put(k, v)
	}
	for _, name := range nestedCollections {
		nested, ok := params[name].(map[string]any)
		if !ok {
			continue
		}
		for k, v := range nested {
			put(k, v)
		}
	}
	return out
}

func isNestedCollection(key string) bool {
	for _, name := range nestedCollections {
		if key == name {
			return true
		}
	}
	return false
}

func decodeParameters(params map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       strictScalars,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}

// strictScalars limits weak typing to lossless conversions. A fractional
// number never becomes an integer and a bool never becomes a string; those
// values are rejected instead of being rewritten.
func strictScalars(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch v := data.(type) {
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("must be a whole number, got %v", v)
			}
		case float32:
			if float64(v) != math.Trunc(float64(v)) {
				return nil, fmt.Errorf("must be a whole number, got %v", v)
			}
		case bool:
			return nil, fmt.Errorf("must be a number, got %v", v)
		}
	case reflect.String:
		if v, ok := data.(bool); ok {
			return nil, fmt.Errorf("must be a string, got %v", v)
		}
	}
	return data, nil
}
