package memo

import (
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/on-the-ground/memo_ive_go/bind"
	"github.com/on-the-ground/memo_ive_go/logkeys"
)

// ClassFunc is the body of a memoized class method. t is the runtime type the
// call was made for, never a pointer type.
type ClassFunc[R any] func(t reflect.Type, args bind.Args) (R, error)

var _ classDescriptor = (*ClassMethod[struct{}, any])(nil)

// ClassMethod memoizes an operation declared on T with one cache per runtime type.
// Every type embedding T can call it and gets its own cache.
type ClassMethod[T, R any] struct {
	name     string
	sig      *bind.Signature
	fn       ClassFunc[R]
	settings settings
	logger   *zap.Logger
	bound    map[reflect.Type]*FunctionCache[R]
}

// NewClassMethod memoizes fn as a class-scoped operation declared on T.
func NewClassMethod[T, R any](name string, sig *bind.Signature, fn ClassFunc[R], opts ...Option) *ClassMethod[T, R] {
	if fn == nil {
		panic("memo: nil class method " + name)
	}
	s := newSettings(opts)
	m := &ClassMethod[T, R]{
		name:     name,
		sig:      sig,
		fn:       fn,
		settings: s,
		logger:   s.logger.With(zap.String(logkeys.RegistryMethod, name)),
		bound:    make(map[reflect.Type]*FunctionCache[R]),
	}
	register(TypeFor[T](), m)
	return m
}

func (m *ClassMethod[T, R]) Name() string { return m.name }

func (m *ClassMethod[T, R]) ClassScoped() bool { return true }

// For returns the cache for runtime type t, creating it on first use.
func (m *ClassMethod[T, R]) For(t reflect.Type) Cache[R] {
	t = normalize(t)
	if t == nil {
		panic("memo: nil type for " + m.name)
	}
	if c, ok := m.bound[t]; ok {
		return c
	}
	c := newFunctionCache(m.name, m.sig, func(args bind.Args) (R, error) {
		return m.fn(t, args)
	}, m.settings)
	m.bound[t] = c
	m.logger.Debug("memo: bound class cache",
		zap.Stringer(logkeys.RegistryType, t),
		zap.Int(logkeys.RegistrySize, len(m.bound)),
	)
	return c
}

// ForValue returns the cache for v's runtime type.
func (m *ClassMethod[T, R]) ForValue(v any) Cache[R] {
	return m.For(TypeOf(v))
}

func (m *ClassMethod[T, R]) controlFor(t reflect.Type) cacheControl {
	return m.For(t)
}

// Call is shorthand for m.For(t).Call(args...).
func (m *ClassMethod[T, R]) Call(t reflect.Type, args ...any) (R, error) {
	return m.For(t).Call(args...)
}

// Clear clears the cache of type t, or of every type when t is nil.
func (m *ClassMethod[T, R]) Clear(t reflect.Type) {
	if t != nil {
		if c, ok := m.bound[normalize(t)]; ok {
			c.Clear()
		}
		return
	}
	for _, c := range m.bound {
		c.Clear()
	}
}

// Len returns the number of types with a cache.
func (m *ClassMethod[T, R]) Len() int {
	return len(m.bound)
}

// MemoizedMethods lists the names of the memoized operations visible on a type:
//
//	names, err := memo.MemoizedMethods.Call(memo.TypeFor[Sum](), true, false)
//
// include_base adds the operations declared on embedded types. class_scoped adds
// class-scoped operations, MemoizedMethods itself included. Names are sorted and the
// returned slice is a copy.
var MemoizedMethods *ClassMethod[Object, []string]

func init() {
	MemoizedMethods = NewClassMethod[Object]("MemoizedMethods",
		bind.MustSignature(
			bind.Optional("include_base", true),
			bind.Optional("class_scoped", false),
		),
		listMemoized,
		WithResultHook(slices.Clone[[]string]),
	)
}

func listMemoized(t reflect.Type, args bind.Args) ([]string, error) {
	includeBase := bind.MustValue[bool](args, "include_base")
	classScoped := bind.MustValue[bool](args, "class_scoped")
	if !includeBase {
		return declared(t, classScoped), nil
	}

	names := make(map[string]struct{})
	for _, sub := range Lineage(t) {
		own, err := MemoizedMethods.Call(sub, false, classScoped)
		if err != nil {
			return nil, err
		}
		for _, n := range own {
			names[n] = struct{}{}
		}
	}
	return sortedNames(names), nil
}
