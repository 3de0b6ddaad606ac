// Package fingerprint provides canonical, deterministic encoding of search
// domain values for use as equality and hash-set keys by the explorer. It is
// the single source of truth for turning an arbitrary Go value — a map, a
// slice, a string, or an algorithm-defined type — into a byte sequence that
// is stable across runs, platforms, and map-iteration orders.
//
// The core never falls back to fmt's default formatting (%v, Stringer) for
// algorithm-defined types, since that can leak pointer addresses and varies
// with map iteration order. Types that need a custom fingerprint implement
// Fingerprinter and are always asked for it explicitly.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Fingerprinter is implemented by algorithm-defined node and message values
// that need to control exactly which of their fields are semantically
// relevant to the search (bookkeeping-only fields must be excluded by the
// implementation).
type Fingerprinter interface {
	Fingerprint() string
}

// Of returns the canonical string encoding of v. Maps are walked in
// ascending key order; empty/absent values are omitted; sequences preserve
// their given order; nested structures are delimited unambiguously. Values
// implementing Fingerprinter delegate to it instead of being walked
// structurally.
//
// Of is total: it never panics and never returns an error, per the
// fingerprint contract (deterministic, total, equal iff semantically equal).
func Of(v any) string {
	var b strings.Builder
	write(&b, v)
	return b.String()
}

// Hash returns the SHA-256 hex digest of Of(v). The explorer's visited set
// is keyed by Hash rather than the raw canonical string to bound memory use
// on large or deep explorations.
func Hash(v any) string {
	sum := sha256.Sum256([]byte(Of(v)))
	return hex.EncodeToString(sum[:])
}

func write(b *strings.Builder, v any) {
	switch vv := v.(type) {
	case nil:
		// absent: omit entirely is handled by callers (map/slice elision);
		// a bare nil value still needs a total encoding.
		b.WriteString("null")
	case Fingerprinter:
		b.WriteString(vv.Fingerprint())
	case string:
		writeString(b, vv)
	case bool:
		if vv {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int:
		b.WriteString(strconv.Itoa(vv))
	case int64:
		b.WriteString(strconv.FormatInt(vv, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(vv, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(vv, 'g', -1, 64))
	case map[string]string:
		writeStringMap(b, vv)
	case map[string]any:
		writeAnyMap(b, vv)
	case []string:
		writeStringSlice(b, vv)
	case []any:
		writeAnySlice(b, vv)
	default:
		// Last-resort total encoding for primitives not special-cased above
		// (e.g. named string/int types that didn't satisfy Fingerprinter).
		// This intentionally avoids fmt's "%v"/Stringer defaults by going
		// through %#v-free, address-free verbs only.
		writeFallback(b, v)
	}
}

// writeFallback handles named primitive types that don't implement
// Fingerprinter and aren't one of the common built-ins above (e.g. a bare
// `type Address string` used outside a struct). It never dereferences a
// pointer or touches a Stringer, so it cannot leak memory addresses; it
// is strictly a last resort, since any type feeding a fingerprint should
// implement Fingerprinter or be one of the built-ins handled in write.
func writeFallback(b *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		writeString(b, rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Bool:
		if rv.Bool() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	default:
		writeString(b, fmt.Sprintf("%T", v))
	}
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

func writeStringMap(b *strings.Builder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, k)
		b.WriteByte(':')
		writeString(b, m[k])
	}
	b.WriteByte('}')
}

func writeAnyMap(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if isEmpty(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, k)
		b.WriteByte(':')
		write(b, m[k])
	}
	b.WriteByte('}')
}

func writeStringSlice(b *strings.Builder, s []string) {
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, v)
	}
	b.WriteByte(']')
}

func writeAnySlice(b *strings.Builder, s []any) {
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		write(b, v)
	}
	b.WriteByte(']')
}

// isEmpty reports whether v is an "empty or absent" value per the
// fingerprint rules (empty strings, nil, zero-length maps/slices are
// omitted from object encodings).
func isEmpty(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return vv == ""
	case map[string]any:
		return len(vv) == 0
	case map[string]string:
		return len(vv) == 0
	case []any:
		return len(vv) == 0
	case []string:
		return len(vv) == 0
	default:
		return false
	}
}
