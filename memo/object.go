package memo

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/on-the-ground/memo_ive_go/logkeys"
)

// Owner is implemented by every pointer to a struct embedding Object.
type Owner interface {
	memoObject() *Object
}

// ObjectOption configures an Object.
type ObjectOption func(*Object)

// MutableAttrs exempts attributes from the write guard: setting them neither
// clears caches nor fails on a locked object.
func MutableAttrs(attrs ...string) ObjectOption {
	return func(o *Object) {
		for _, a := range attrs {
			o.mutableAttrs[a] = struct{}{}
		}
	}
}

// AttrsMutateClassCaches controls whether guarded writes also clear the
// class-scoped caches of the object's type. Default: true.
func AttrsMutateClassCaches(enabled bool) ObjectOption {
	return func(o *Object) { o.keepClassCaches = !enabled }
}

// MutatesWith names objects whose caches depend on this one. They are cleared
// whenever this object is mutated.
func MutatesWith(dependents func() []Owner) ObjectOption {
	return func(o *Object) { o.dependents = dependents }
}

// ObjectLogger sets the object's logger.
func ObjectLogger(logger *zap.Logger) ObjectOption {
	return func(o *Object) { o.logger = logger }
}

// Object carries the mutation protocol of a type with memoized methods. Embed it
// by value and initialize it with NewObject:
//
//	type Sum struct {
//	    memo.Object
//	    base int
//	}
//
//	s := &Sum{Object: memo.NewObject[Sum](), base: 5}
//
// The zero Object works for instance caches. It learns its runtime type, which
// class-scoped invalidation needs, on the first Set or Mutating call, from the
// Owner that call is given. When Object is embedded through another struct, as in
// Square embedding Shape embedding Object, a write through &sq.Shape would record
// Shape. Initialize such objects with NewObject[Square] so the outermost type is
// always the one whose class caches are cleared.
//
// The method caches of an object belong to it. A struct copy starts with none.
type Object struct {
	typ    reflect.Type
	locked bool

	mutableAttrs    map[string]struct{}
	keepClassCaches bool
	dependents      func() []Owner

	self           *Object
	methods        map[any]any // *Method -> Cache
	caches         []cacheControl
	cachesDisabled bool

	logger *zap.Logger
}

// NewObject returns the Object to embed in a T. T is the outermost type: for
// type Square struct{ Shape } with Shape embedding Object, use NewObject[Square].
func NewObject[T any](opts ...ObjectOption) Object {
	o := Object{
		typ:          TypeFor[T](),
		mutableAttrs: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *Object) memoObject() *Object { return o }

// adopt returns owner's Object, recording owner's runtime type if still unknown.
func adopt(owner Owner) *Object {
	o := owner.memoObject()
	if o.typ == nil {
		o.typ = TypeOf(owner)
	}
	return o
}

func (o *Object) log() *zap.Logger {
	if o.logger == nil {
		o.logger = loadDefaultLogger()
	}
	return o.logger
}

func (o *Object) describe() string {
	if o.typ == nil {
		return "memo.Object"
	}
	return o.typ.String()
}

// claim drops method caches copied along with the Object from another struct.
func (o *Object) claim() {
	if o.self == o {
		return
	}
	o.self = o
	o.methods = nil
	o.caches = nil
}

func (o *Object) methodCache(m any) (any, bool) {
	o.claim()
	c, ok := o.methods[m]
	return c, ok
}

func (o *Object) setMethodCache(m, c any) {
	o.claim()
	if o.methods == nil {
		o.methods = make(map[any]any)
	}
	o.methods[m] = c
}

// attach adds a receiver cache created after the object.
func (o *Object) attach(c cacheControl) {
	o.claim()
	if o.cachesDisabled {
		c.Disable()
	}
	o.caches = append(o.caches, c)
}

func (o *Object) IsLocked() bool { return o.locked }

// Lock makes the object immutable and enables its instance caches.
func (o *Object) Lock() {
	o.locked = true
	o.EnableCaches(false)
	o.log().Debug("memo: locked",
		zap.String(logkeys.ObjectType, o.describe()),
		zap.Bool(logkeys.ObjectLocked, true),
	)
}

// Unlock makes the object mutable again. With clear, its instance caches are
// disabled and emptied.
func (o *Object) Unlock(clear bool) {
	o.locked = false
	if clear {
		o.DisableCaches(false)
		o.ClearCaches(false)
	}
	o.log().Debug("memo: unlocked",
		zap.String(logkeys.ObjectType, o.describe()),
		zap.Bool(logkeys.ObjectLocked, false),
	)
}

// LockedScope locks the object until the scope is closed. If the object is already
// locked the scope does nothing, so only the outermost scope unlocks.
func (o *Object) LockedScope(clearOnUnlock bool) *Scope {
	if o.locked {
		return noopScope()
	}
	o.Lock()
	return &Scope{closeFn: func() { o.Unlock(clearOnUnlock) }}
}

// UnlockedScope disables the instance caches and unlocks the object until the
// scope is closed. Closing re-enables the caches and restores a prior lock.
func (o *Object) UnlockedScope(clear bool) *Scope {
	if clear {
		o.ClearCaches(false)
	}
	o.DisableCaches(false)
	wasLocked := o.locked
	if wasLocked {
		o.Unlock(clear)
	}
	return &Scope{closeFn: func() {
		o.EnableCaches(false)
		if wasLocked {
			o.Lock()
		}
	}}
}

// WithLocked runs fn inside a LockedScope.
func (o *Object) WithLocked(clearOnUnlock bool, fn func() error) error {
	scope := o.LockedScope(clearOnUnlock)
	defer scope.Close()
	return fn()
}

// WithUnlocked runs fn inside an UnlockedScope.
func (o *Object) WithUnlocked(clear bool, fn func() error) error {
	scope := o.UnlockedScope(clear)
	defer scope.Close()
	return fn()
}

func (o *Object) EnableCaches(includeClassScoped bool) {
	o.cachesDisabled = false
	o.each(includeClassScoped, cacheControl.Enable)
}

func (o *Object) DisableCaches(includeClassScoped bool) {
	o.cachesDisabled = true
	o.each(includeClassScoped, cacheControl.Disable)
}

// ClearCaches empties the instance caches, and the caches of the object's
// runtime type when includeClassScoped is set.
func (o *Object) ClearCaches(includeClassScoped bool) {
	o.each(includeClassScoped, cacheControl.Clear)
}

func (o *Object) each(includeClassScoped bool, fn func(cacheControl)) {
	for _, c := range o.caches {
		fn(c)
	}
	if !includeClassScoped {
		return
	}
	for _, c := range o.classCaches() {
		fn(c)
	}
}

// classCaches returns the caches of every class-scoped operation visible on the
// object's runtime type.
func (o *Object) classCaches() []cacheControl {
	if o.typ == nil {
		return nil
	}
	names, err := MemoizedMethods.Call(o.typ, true, true)
	if err != nil {
		o.log().Warn("memo: listing class caches failed", zap.Error(err))
		return nil
	}

	var out []cacheControl
	for _, name := range names {
		d, ok := lookup(o.typ, name)
		if !ok {
			continue
		}
		if cd, ok := d.(classDescriptor); ok {
			out = append(out, cd.controlFor(o.typ))
		}
	}
	return out
}

// Mutate runs body as a mutating operation named op. A locked object refuses with
// ErrLockedMutation and nothing is cleared. Otherwise the object's caches, and the
// caches of its MutatesWith dependents, are cleared before body runs.
func (o *Object) Mutate(op string, classScoped bool, body func() error) error {
	if err := o.invalidate(op, classScoped); err != nil {
		return err
	}
	return body()
}

// Touch guards a write to attr. Call it before assigning the field; Set does both.
func (o *Object) Touch(attr string) error {
	if _, ok := o.mutableAttrs[attr]; ok {
		return nil
	}
	return o.invalidate("set "+attr, !o.keepClassCaches)
}

func (o *Object) invalidate(op string, classScoped bool) error {
	if o.locked {
		return fmt.Errorf("%w: %s on %s", ErrLockedMutation, op, o.describe())
	}

	var dependents []Owner
	if o.dependents != nil {
		dependents = o.dependents()
	}
	for _, d := range dependents {
		if d.memoObject().locked {
			return fmt.Errorf("%w: %s on %s locks dependent %s",
				ErrLockedMutation, op, o.describe(), d.memoObject().describe())
		}
	}

	o.ClearCaches(classScoped)
	for _, d := range dependents {
		d.memoObject().ClearCaches(false)
	}
	o.log().Debug("memo: mutation cleared caches",
		zap.String(logkeys.ObjectType, o.describe()),
		zap.String(logkeys.ObjectOperation, op),
		zap.Bool(logkeys.ObjectClassScoped, classScoped),
		zap.Int(logkeys.ObjectDependents, len(dependents)),
	)
	return nil
}
