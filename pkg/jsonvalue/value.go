// Package jsonvalue is an order-preserving JSON tree.
//
// A Value is a mapping, a sequence or a scalar. Mappings keep their members
// in the order they were received and scalars keep their exact source text,
// so large numeric identifiers and key order from the e-Gov API survive a
// parse/serialize round trip unchanged.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON")

// Kind tags the variant held by a Value.
type Kind int

const (
	Scalar Kind = iota
	Object
	Array
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value. The zero Value is the scalar null.
type Value struct {
	kind    Kind
	raw     string
	members []Member
	items   []Value
}

var null = Value{kind: Scalar, raw: "null"}

// Null returns the JSON null scalar.
func Null() Value { return null }

// String returns a string scalar.
func String(s string) Value {
	return Value{kind: Scalar, raw: quote(s)}
}

// Int returns an integer scalar.
func Int(n int) Value {
	return Value{kind: Scalar, raw: strconv.Itoa(n)}
}

// NewObject returns a mapping holding members in the given order.
func NewObject(members ...Member) Value {
	return Value{kind: Object, members: members}
}

// NewArray returns a sequence holding items in the given order.
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// Parse decodes data into a Value.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// MustParse is Parse for literals in tests and tables; it panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic("jsonvalue: " + err.Error() + ": " + s)
	}
	return v
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.IsObject():
		v := Value{kind: Object, members: []Member{}}
		r.ForEach(func(key, value gjson.Result) bool {
			v.members = append(v.members, Member{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return v
	case r.IsArray():
		v := Value{kind: Array, items: []Value{}}
		r.ForEach(func(_, value gjson.Result) bool {
			v.items = append(v.items, fromResult(value))
			return true
		})
		return v
	case r.Raw == "":
		return null
	default:
		return Value{kind: Scalar, raw: r.Raw}
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsObject reports whether v is a mapping.
func (v Value) IsObject() bool { return v.kind == Object }

// IsArray reports whether v is a sequence.
func (v Value) IsArray() bool { return v.kind == Array }

// Members returns the members of a mapping, nil otherwise. The slice must
// not be modified.
func (v Value) Members() []Member { return v.members }

// Items returns the elements of a sequence, nil otherwise. The slice must
// not be modified.
func (v Value) Items() []Value { return v.items }

// Len is the number of members or elements; 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Object:
		return len(v.members)
	case Array:
		return len(v.items)
	}
	return 0
}

// Get returns the member named key of a mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Path follows dotted components through nested mappings.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Str returns the decoded string of a string scalar.
func (v Value) Str() (string, bool) {
	if v.kind != Scalar || len(v.raw) == 0 || v.raw[0] != '"' {
		return "", false
	}
	return gjson.Parse(v.raw).String(), true
}

// With returns a copy of the mapping v where key is set to val. An existing
// member keeps its position; a new one is appended.
func (v Value) With(key string, val Value) Value {
	members := make([]Member, 0, len(v.members)+1)
	replaced := false
	for _, m := range v.members {
		if m.Key == key {
			m.Value = val
			replaced = true
		}
		members = append(members, m)
	}
	if !replaced {
		members = append(members, Member{Key: key, Value: val})
	}
	return Value{kind: Object, members: members}
}

// Equal reports whether a and b serialize identically, key order included.
func Equal(a, b Value) bool {
	return bytes.Equal(a.Compact(), b.Compact())
}

// Compact serializes v without insignificant whitespace.
func (v Value) Compact() []byte {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.Bytes()
}

// String returns the compact serialization of v.
func (v Value) String() string {
	return string(v.Compact())
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Compact(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) write(buf *bytes.Buffer) {
	switch v.kind {
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			m.Value.write(buf)
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.write(buf)
		}
		buf.WriteByte(']')
	default:
		if v.raw == "" {
			buf.WriteString("null")
			return
		}
		buf.WriteString(v.raw)
	}
}

// quote encodes s as a JSON string without HTML escaping, so Japanese text
// and <, >, & come out as written.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
