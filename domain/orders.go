package domain

import (
	"strconv"
	"strings"
	"time"
)

// Document is a raw vendor JSON object. Orders pass through the gateway
// mostly unchanged, so they stay map-shaped instead of being mirrored
// into structs field by field; typed accessors below read the handful
// of fields the pipeline cares about.
type Document map[string]any

// OrdersPage is one page of the vendor's bulk orders endpoint.
type OrdersPage struct {
	Orders        []Document `json:"orders"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// Value resolves a dotted path ("context.displayOrder") inside the
// document. The bool is false when any path segment is absent.
func (d Document) Value(path string) (any, bool) {
	if d == nil {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String resolves a dotted path to a non-empty string.
func (d Document) String(path string) (string, bool) {
	v, ok := d.Value(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Number resolves a dotted path to a float64, coercing the numeric
// shapes JSON decoding can produce plus numeric strings.
func (d Document) Number(path string) (float64, bool) {
	v, ok := d.Value(path)
	if !ok {
		return 0, false
	}
	return CoerceNumber(v)
}

// Child resolves a key to a nested document.
func (d Document) Child(key string) (Document, bool) {
	v, ok := d.Value(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Document(m), true
}

// Slice resolves a key to a JSON array.
func (d Document) Slice(key string) ([]any, bool) {
	v, ok := d.Value(key)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	if !ok {
		return nil, false
	}
	return s, true
}

// CoerceNumber converts the value shapes a decoded vendor document can
// hold into a float64.
func CoerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CoerceString renders a scalar identifier value as a string. Numeric
// identifiers are rendered without a trailing ".0" when integral.
func CoerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10), true
		}
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

// ParseVendorTime parses a vendor timestamp into epoch milliseconds.
// The vendor emits RFC 3339 with or without fractional seconds.
func ParseVendorTime(s string) (int64, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// ItemRef identifies a menu item or modifier option by any subset of
// the vendor's three identifier schemes.
type ItemRef struct {
	GUID            string
	MultiLocationID string
	ReferenceID     any
}

// ItemRefFrom reads the identifier fields out of an "item"-shaped
// vendor object. Identifier fields that are absent stay zero-valued.
func ItemRefFrom(doc Document) ItemRef {
	ref := ItemRef{}
	if g, ok := doc.String("guid"); ok {
		ref.GUID = g
	}
	if v, ok := doc.Value("multiLocationId"); ok {
		if s, ok := CoerceString(v); ok {
			ref.MultiLocationID = s
		}
	}
	if v, ok := doc.Value("referenceId"); ok && v != nil {
		ref.ReferenceID = v
	}
	return ref
}

// Empty reports whether the reference carries no identifier at all.
func (r ItemRef) Empty() bool {
	return r.GUID == "" && r.MultiLocationID == "" && r.ReferenceID == nil
}
