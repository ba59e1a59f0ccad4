package field

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidValue is returned for raw values of an unsupported shape.
var ErrInvalidValue = errors.New("field: invalid value")

// Value is an accepted field value: the decrypted upload ids in submission
// order and whether the field is multiple. The zero Value is an empty
// single field.
type Value struct {
	multiple bool
	ids      []string
}

// Multiple reports whether the field was submitted as a list.
func (v Value) Multiple() bool { return v.multiple }

// Empty reports whether the value references no upload.
func (v Value) Empty() bool { return len(v.ids) == 0 }

// IDs returns a copy of the decrypted ids.
func (v Value) IDs() []string {
	return append([]string(nil), v.ids...)
}

// parseValue decrypts raw. Accepted shapes are nil, string, []string and
// []any holding strings or nils. A list whose first element is empty is an
// empty multiple value; later empty elements are skipped. Any decryption
// failure fails the whole value.
func parseValue(d Decrypter, raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		if x == "" {
			return Value{}, nil
		}
		id, err := decryptID(d, x)
		if err != nil {
			return Value{}, err
		}
		return Value{ids: []string{id}}, nil
	case []string:
		return parseList(d, x)
	case []any:
		tokens := make([]string, len(x))
		for i, el := range x {
			switch s := el.(type) {
			case nil:
			case string:
				tokens[i] = s
			default:
				return Value{}, fmt.Errorf("%w: element %d is %T", ErrInvalidValue, i, el)
			}
		}
		return parseList(d, tokens)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrInvalidValue, raw)
	}
}

func parseList(d Decrypter, tokens []string) (Value, error) {
	if len(tokens) == 0 || tokens[0] == "" {
		return Value{multiple: true}, nil
	}

	ids := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		id, err := decryptID(d, tok)
		if err != nil {
			return Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return Value{multiple: true, ids: ids}, nil
}

// formValue picks the raw value of field name out of a submitted form:
// "name[]" or a repeated "name" is read as a list, a lone "name" as a
// single value.
func formValue(form url.Values, name string) any {
	if list, ok := form[name+"[]"]; ok {
		return list
	}
	switch vals := form[name]; len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	default:
		return vals
	}
}
