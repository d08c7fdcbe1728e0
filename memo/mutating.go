package memo

// Set writes v to field, the attribute attr of owner, through the write guard.
//
//	func (s *Sum) SetBase(b int) error { return memo.Set(s, "base", &s.base, b) }
func Set[V any](owner Owner, attr string, field *V, v V) error {
	if err := adopt(owner).Touch(attr); err != nil {
		return err
	}
	*field = v
	return nil
}

// MutatingOption configures Mutating and Mutating1.
type MutatingOption func(*mutatingConfig)

type mutatingConfig struct {
	classScoped bool
}

// MutatesClassScoped makes the operation clear the class-scoped caches of the
// receiver's type as well. Default: false.
func MutatesClassScoped(enabled bool) MutatingOption {
	return func(c *mutatingConfig) { c.classScoped = enabled }
}

func newMutatingConfig(opts []MutatingOption) mutatingConfig {
	var c mutatingConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Mutating marks fn as an operation that changes its receiver. See Object.Mutate.
//
//	var reset = memo.Mutating("Reset", func(s *Sum) error { s.base = 0; return nil })
func Mutating[T Owner](op string, fn func(T) error, opts ...MutatingOption) func(T) error {
	cfg := newMutatingConfig(opts)
	return func(recv T) error {
		return adopt(recv).Mutate(op, cfg.classScoped, func() error {
			return fn(recv)
		})
	}
}

// Mutating1 is Mutating for an operation taking one argument and returning a result.
func Mutating1[T Owner, A, R any](op string, fn func(T, A) (R, error), opts ...MutatingOption) func(T, A) (R, error) {
	cfg := newMutatingConfig(opts)
	return func(recv T, a A) (R, error) {
		var out R
		err := adopt(recv).Mutate(op, cfg.classScoped, func() error {
			var err error
			out, err = fn(recv, a)
			return err
		})
		return out, err
	}
}
