package dto

import (
	"strings"

	"github.com/spf13/cast"
)

// RawRecord is a server record as decoded from JSON, before normalization.
// Only the normalizer should read it; nothing past that boundary sees the loose shape.
type RawRecord map[string]interface{}

// Has reports whether key is present with a non-nil value.
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Value returns the raw value for key.
func (r RawRecord) Value(key string) interface{} {
	if r == nil {
		return nil
	}
	return r[key]
}

// String returns the trimmed string form of key, or "" for missing, null or non-scalar values.
func (r RawRecord) String(key string) string {
	v := r.Value(key)
	switch v.(type) {
	case nil, map[string]interface{}, []interface{}:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// FirstString walks keys in order and returns the first non-blank value.
func (r RawRecord) FirstString(keys ...string) string {
	for _, key := range keys {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return ""
}

// Record returns key as a nested record, or nil.
func (r RawRecord) Record(key string) RawRecord {
	return AsRecord(r.Value(key))
}

// Records returns the object elements of the array at key, skipping anything that is not an object.
func (r RawRecord) Records(key string) []RawRecord {
	items, ok := r.Value(key).([]interface{})
	if !ok {
		return nil
	}
	out := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if rec := AsRecord(item); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// List returns the array at key unchanged, or nil.
func (r RawRecord) List(key string) []interface{} {
	items, _ := r.Value(key).([]interface{})
	return items
}

// AsRecord converts a decoded JSON object into a RawRecord.
func AsRecord(v interface{}) RawRecord {
	switch typed := v.(type) {
	case RawRecord:
		return typed
	case map[string]interface{}:
		return RawRecord(typed)
	default:
		return nil
	}
}
