package dbapi

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one row returned by the backend. Keys keep the order in which the
// backend serialized them, which decides the column order of the records table.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRecord returns an empty record ready for Set.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, any]()}
}

// RecordOf builds a record from alternating key/value pairs.
func RecordOf(pairs ...any) Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprint(pairs[i])
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get returns the value under key and whether the key exists.
func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Set stores value under key, appending the key if it is new.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, value)
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

func (r *Record) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return err
	}
	r.fields = fields
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.fields)
}
