package memo

import (
	"reflect"
	"sort"
	"sync"
)

// descriptor is a memoized operation declared on a type.
type descriptor interface {
	Name() string
	ClassScoped() bool
}

// classDescriptor is a class-scoped descriptor that can hand out a type's cache.
type classDescriptor interface {
	descriptor
	controlFor(t reflect.Type) cacheControl
}

var catalog = struct {
	sync.RWMutex
	byType map[reflect.Type][]descriptor
}{byType: make(map[reflect.Type][]descriptor)}

func register(t reflect.Type, d descriptor) {
	catalog.Lock()
	defer catalog.Unlock()
	catalog.byType[t] = append(catalog.byType[t], d)
}

// declared returns the sorted names of the operations declared on t itself.
func declared(t reflect.Type, classScoped bool) []string {
	catalog.RLock()
	defer catalog.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range catalog.byType[t] {
		if d.ClassScoped() && !classScoped {
			continue
		}
		seen[d.Name()] = struct{}{}
	}
	return sortedNames(seen)
}

// lookup finds the descriptor called name, searching t's lineage in order.
func lookup(t reflect.Type, name string) (descriptor, bool) {
	catalog.RLock()
	defer catalog.RUnlock()

	for _, sub := range Lineage(t) {
		for _, d := range catalog.byType[sub] {
			if d.Name() == name {
				return d, true
			}
		}
	}
	return nil, false
}

// TypeOf returns the runtime type used to partition class-scoped caches:
// the dynamic type of v with pointers dereferenced.
func TypeOf(v any) reflect.Type {
	return normalize(reflect.TypeOf(v))
}

// TypeFor is TypeOf for a static type.
func TypeFor[T any]() reflect.Type {
	return normalize(reflect.TypeFor[T]())
}

func normalize(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Lineage lists t followed by every struct type it embeds, breadth first and
// without repeats. It plays the role of a base-class chain: operations declared on
// an embedded type are visible on the embedding type.
func Lineage(t reflect.Type) []reflect.Type {
	t = normalize(t)
	if t == nil {
		return nil
	}

	out := []reflect.Type{t}
	seen := map[reflect.Type]struct{}{t: {}}
	for i := 0; i < len(out); i++ {
		cur := out[i]
		if cur.Kind() != reflect.Struct {
			continue
		}
		for j := range cur.NumField() {
			f := cur.Field(j)
			if !f.Anonymous {
				continue
			}
			ft := normalize(f.Type)
			if _, ok := seen[ft]; ok {
				continue
			}
			seen[ft] = struct{}{}
			out = append(out, ft)
		}
	}
	return out
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
