package canon

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Canonical lets user-defined types supply their own stable key representation.
// The returned value is canonicalized again, so it may be a map, slice or struct.
type Canonical interface {
	Canonical() any
}

// ID is the comparable part of a Key. Use it to index entries.
type ID struct {
	repr   string
	digest uint64
}

// String returns the canonical encoding.
func (id ID) String() string { return id.repr }

// Digest returns the xxhash of the canonical encoding.
func (id ID) Digest() uint64 { return id.digest }

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool { return id.repr == "" }

// Key is the canonical representation of a value.
//
// Pointers, channels and funcs are encoded by address. A Key holds their referents
// so an address stays unique for as long as the Key, or an entry storing it, lives.
type Key struct {
	ID
	refs []any
}

func newKey(repr string, refs []any) Key {
	return Key{ID: ID{repr: repr, digest: xxhash.Sum64String(repr)}, refs: refs}
}

// Pinned returns the number of referents k keeps alive.
func (k Key) Pinned() int { return len(k.refs) }

// Of canonicalizes a single value.
func Of(v any) Key {
	var e encoder
	return newKey(e.encode(reflect.ValueOf(v), true), e.refs)
}

// OfArgs canonicalizes a bound argument map. Every value is canonicalized on its own,
// then the map is encoded as an unordered set of (name, value) pairs.
func OfArgs(args map[string]any) Key {
	var e encoder
	pairs := make([]string, 0, len(args))
	for name, v := range args {
		pairs = append(pairs, strconv.Quote(name)+"="+e.encode(reflect.ValueOf(v), true))
	}
	sort.Strings(pairs)
	return newKey("args{"+strings.Join(pairs, ",")+"}", e.refs)
}

// encoder collects the referents of identity-encoded values.
type encoder struct {
	refs []any
}

func (e *encoder) pin(v reflect.Value) {
	switch {
	case v.Kind() != reflect.Func:
		e.refs = append(e.refs, v.UnsafePointer())
	case v.CanInterface():
		e.refs = append(e.refs, v.Interface())
	}
}

var canonicalType = reflect.TypeFor[Canonical]()

func (e *encoder) encode(v reflect.Value, hooks bool) string {
	if !v.IsValid() {
		return "nil"
	}

	if hooks && v.CanInterface() && v.Type().Implements(canonicalType) && !isNilRef(v) {
		out := reflect.ValueOf(v.Interface().(Canonical).Canonical())
		// a hook returning its own type is encoded structurally
		return e.encode(out, !out.IsValid() || out.Type() != v.Type())
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return e.encode(v.Elem(), true)
	case reflect.Map:
		if isSet(v.Type()) {
			return e.encodeSet(v)
		}
		return e.encodeMap(v)
	case reflect.Slice, reflect.Array:
		return e.encodeSeq(v)
	case reflect.Struct:
		return e.encodeStruct(v)
	case reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return v.Type().String() + "(nil)"
		}
		e.pin(v)
		return fmt.Sprintf("%s@%#x", v.Type(), v.Pointer())
	default:
		return v.Type().String() + "(" + scalar(v) + ")"
	}
}

func isNilRef(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// isSet reports whether t is the conventional Go set type map[K]struct{}.
func isSet(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

func (e *encoder) encodeSet(v reflect.Value) string {
	elems := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		elems = append(elems, e.encode(iter.Key(), true))
	}
	sort.Strings(elems)
	return "set{" + strings.Join(elems, ",") + "}"
}

func (e *encoder) encodeMap(v reflect.Value) string {
	pairs := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		pairs = append(pairs, e.encode(iter.Key(), true)+"="+e.encode(iter.Value(), true))
	}
	sort.Strings(pairs)
	return "map{" + strings.Join(pairs, ",") + "}"
}

func (e *encoder) encodeSeq(v reflect.Value) string {
	elems := make([]string, v.Len())
	for i := range elems {
		elems[i] = e.encode(v.Index(i), true)
	}
	return "[" + strings.Join(elems, ",") + "]"
}

func (e *encoder) encodeStruct(v reflect.Value) string {
	t := v.Type()
	fields := make([]string, t.NumField())
	for i := range fields {
		fields[i] = t.Field(i).Name + ":" + e.encode(v.Field(i), true)
	}
	return t.String() + "{" + strings.Join(fields, ",") + "}"
}

func scalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	case reflect.String:
		return strconv.Quote(v.String())
	default:
		return v.Kind().String()
	}
}
