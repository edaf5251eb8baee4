package crud

import "strconv"

// Record is a loosely typed row as returned by the IPAM API: field name to
// value. Values coming off the wire are JSON-decoded, so numbers arrive as
// float64 and foreign keys need coercion before comparison.
type Record map[string]any

// Clone returns a shallow copy. Values are scalars or id slices, so a
// shallow copy is enough for draft seeding.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's server-assigned id, if present.
func (r Record) ID() (int64, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	id, ok := AsInt64(v)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// AsInt64 coerces the dynamic value types a Record can hold into int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		if n == "" {
			return 0, false
		}
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// AsString renders a record value for display or as a form control value.
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		// JSON numbers: render integral values without a fraction.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// IsEmpty reports whether a draft value counts as unset for required-field
// validation. Zero foreign keys count as unset; booleans never do (an absent
// toggle means false, which is a value).
func IsEmpty(f Field, v any) bool {
	if v == nil {
		return true
	}
	switch f.Type {
	case BoolFieldType:
		return false
	case ForeignKeyFieldType:
		id, ok := AsInt64(v)
		return !ok || id == 0
	case ManyToManyFieldType:
		ids, ok := v.([]int64)
		return !ok || len(ids) == 0
	case IntFieldType:
		_, ok := AsInt64(v)
		return !ok
	default:
		return AsString(v) == ""
	}
}
