package schema

import "strings"

// Record is one generated row: storage keys in insertion order and their values.
type Record struct {
	keys   []string
	values []any
}

func NewRecord(capacity int) *Record {
	return &Record{
		keys:   make([]string, 0, capacity),
		values: make([]any, 0, capacity),
	}
}

// Set stores v under key, replacing an earlier value for the same key.
func (r *Record) Set(key string, v any) {
	for i, k := range r.keys {
		if k == key {
			r.values[i] = v
			return
		}
	}
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
}

func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r *Record) Keys() []string {
	return r.keys
}

func (r *Record) Values() []any {
	return r.values
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Signature identifies the column set, so records missing a field can be
// inserted apart from complete ones.
func (r *Record) Signature() string {
	return strings.Join(r.keys, ",")
}
