// Package envelope extracts entities from commerce API responses whose
// outer structure is not stable. A response is matched against an ordered
// list of known shapes; the first shape that applies wins.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Shape names the envelope variant a response was matched against.
type Shape string

const (
	ShapeDataKeyed Shape = "data.<key>" // { "data": { "<key>": [...], "count": n } }
	ShapeKeyed     Shape = "<key>"      // { "<key>": [...], "count": n }
	ShapeDataArray Shape = "data[]"     // { "data": [...] }
	ShapeArray     Shape = "[]"         // [...]
	ShapeDataItem  Shape = "data"       // { "data": {...} }
	ShapeUnknown   Shape = "unknown"
)

var ErrMalformed = errors.New("malformed response body")

// List is a normalized collection. Count falls back to len(Items) when the
// response carries no usable count.
type List[T any] struct {
	Items []T
	Count int
	Shape Shape
}

// candidate is what a matcher found: the raw items and, when present,
// the count sitting next to them.
type candidate struct {
	items json.RawMessage
	count *int
}

type listMatcher struct {
	shape Shape
	match func(doc document, key string) (candidate, bool)
}

// listMatchers are tried in order.
var listMatchers = []listMatcher{
	{ShapeDataKeyed, matchDataKeyed},
	{ShapeKeyed, matchKeyed},
	{ShapeDataArray, matchDataArray},
	{ShapeArray, matchArray},
}

// DecodeList normalizes a list response. Unrecognized shapes produce an
// empty list without error; an undecodable body or item payload is an
// ErrMalformed error.
func DecodeList[T any](body []byte, key string) (List[T], error) {
	doc, err := parse(body)
	if err != nil {
		return List[T]{Items: []T{}, Shape: ShapeUnknown}, err
	}

	for _, m := range listMatchers {
		c, ok := m.match(doc, key)
		if !ok {
			continue
		}

		var items []T
		if err := json.Unmarshal(c.items, &items); err != nil {
			return List[T]{Items: []T{}, Shape: m.shape}, fmt.Errorf("%w: %s items: %v", ErrMalformed, m.shape, err)
		}
		if items == nil {
			items = []T{}
		}

		count := len(items)
		if c.count != nil && *c.count > 0 {
			count = *c.count
		}
		return List[T]{Items: items, Count: count, Shape: m.shape}, nil
	}

	return List[T]{Items: []T{}, Shape: ShapeUnknown}, nil
}

type itemMatcher struct {
	shape Shape
	match func(doc document, key string) (json.RawMessage, bool)
}

var itemMatchers = []itemMatcher{
	{ShapeDataKeyed, matchDataKeyedItem},
	{ShapeKeyed, matchKeyedItem},
	{ShapeDataItem, matchDataItem},
}

// DecodeOne normalizes a single-entity response. It returns nil when no
// known shape carries the entity.
func DecodeOne[T any](body []byte, key string) (*T, Shape, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, ShapeUnknown, err
	}

	for _, m := range itemMatchers {
		raw, ok := m.match(doc, key)
		if !ok {
			continue
		}

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, m.shape, fmt.Errorf("%w: %s entity: %v", ErrMalformed, m.shape, err)
		}
		return &item, m.shape, nil
	}

	return nil, ShapeUnknown, nil
}

// document is a parsed response: either an object or an array at the top.
type document struct {
	object map[string]json.RawMessage
	array  json.RawMessage
}

func parse(body []byte) (document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return document{}, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	switch trimmed[0] {
	case '[':
		if !json.Valid(trimmed) {
			return document{}, fmt.Errorf("%w: invalid array", ErrMalformed)
		}
		return document{array: trimmed}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return document{object: obj}, nil
	default:
		if !json.Valid(trimmed) {
			return document{}, fmt.Errorf("%w: not JSON", ErrMalformed)
		}
		// A scalar or null body is valid JSON but carries nothing.
		return document{}, nil
	}
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func objectOf(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if !isObject(raw) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func countOf(obj map[string]json.RawMessage) *int {
	raw, ok := obj["count"]
	if !ok {
		return nil
	}
	var count float64
	if err := json.Unmarshal(raw, &count); err != nil {
		return nil
	}
	n := int(count)
	return &n
}

func matchDataKeyed(doc document, key string) (candidate, bool) {
	data, ok := objectOf(doc.object["data"])
	if !ok {
		return candidate{}, false
	}
	items, ok := data[key]
	if !ok || !isArray(items) {
		return candidate{}, false
	}
	return candidate{items: items, count: countOf(data)}, true
}

func matchKeyed(doc document, key string) (candidate, bool) {
	items, ok := doc.object[key]
	if !ok || !isArray(items) {
		return candidate{}, false
	}
	return candidate{items: items, count: countOf(doc.object)}, true
}

func matchDataArray(doc document, _ string) (candidate, bool) {
	data, ok := doc.object["data"]
	if !ok || !isArray(data) {
		return candidate{}, false
	}
	return candidate{items: data}, true
}

func matchArray(doc document, _ string) (candidate, bool) {
	if doc.array == nil {
		return candidate{}, false
	}
	return candidate{items: doc.array}, true
}

func matchDataKeyedItem(doc document, key string) (json.RawMessage, bool) {
	data, ok := objectOf(doc.object["data"])
	if !ok {
		return nil, false
	}
	item, ok := data[key]
	if !ok || !isObject(item) {
		return nil, false
	}
	return item, true
}

func matchKeyedItem(doc document, key string) (json.RawMessage, bool) {
	item, ok := doc.object[key]
	if !ok || !isObject(item) {
		return nil, false
	}
	return item, true
}

// matchDataItem accepts "data" as the entity itself, as long as it is not
// a wrapper around key.
func matchDataItem(doc document, key string) (json.RawMessage, bool) {
	data, ok := doc.object["data"]
	if !ok || !isObject(data) {
		return nil, false
	}
	obj, ok := objectOf(data)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	if _, wrapped := obj[key]; wrapped {
		return nil, false
	}
	return data, true
}
