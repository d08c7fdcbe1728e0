package bind

import (
	"fmt"
	"strconv"
	"strings"
)

// Signature is a validated parameter list.
type Signature struct {
	params        []Param
	index         map[string]int
	numPositional int
	varPos        int
	varKw         int
}

// NewSignature validates params and builds a Signature.
//
// Parameters must be declared in call order: positional-or-keyword (required before
// optional), at most one VarPositional, keyword-only, at most one VarKeyword.
func NewSignature(params ...Param) (*Signature, error) {
	s := &Signature{
		params: append([]Param(nil), params...),
		index:  make(map[string]int, len(params)),
		varPos: -1,
		varKw:  -1,
	}

	stage := PositionalOrKeyword
	seenOptional := false
	for i, p := range s.params {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: parameter %d has no name", ErrInvalidSignature, i)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidSignature, p.Name)
		}
		if p.Kind < stage {
			return nil, fmt.Errorf("%w: %s parameter %q declared after %s parameters", ErrInvalidSignature, p.Kind, p.Name, stage)
		}
		s.index[p.Name] = i

		switch p.Kind {
		case PositionalOrKeyword:
			if p.HasDefault {
				seenOptional = true
			} else if seenOptional {
				return nil, fmt.Errorf("%w: required parameter %q follows a parameter with default", ErrInvalidSignature, p.Name)
			}
			s.numPositional++
		case VarPositionalKind:
			if s.varPos >= 0 {
				return nil, fmt.Errorf("%w: more than one var-positional parameter", ErrInvalidSignature)
			}
			s.varPos = i
		case VarKeywordKind:
			if s.varKw >= 0 {
				return nil, fmt.Errorf("%w: more than one var-keyword parameter", ErrInvalidSignature)
			}
			s.varKw = i
		}
		stage = p.Kind
	}
	return s, nil
}

// MustSignature is the panic-on-failure variant of NewSignature.
func MustSignature(params ...Param) *Signature {
	s, err := NewSignature(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Positional declares n required parameters named arg0 ... arg{n-1}.
func Positional(n int) *Signature {
	params := make([]Param, n)
	for i := range params {
		params[i] = Required("arg" + strconv.Itoa(i))
	}
	return MustSignature(params...)
}

// Variadic declares (*args, **kwargs). It binds any call, keyed by exactly what was passed.
func Variadic() *Signature {
	return MustSignature(VarPositional("args"), VarKeyword("kwargs"))
}

// Params returns a copy of the declared parameters.
func (s *Signature) Params() []Param {
	return append([]Param(nil), s.params...)
}

func (s *Signature) String() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		switch {
		case p.Kind == VarPositionalKind:
			parts[i] = "*" + p.Name
		case p.Kind == VarKeywordKind:
			parts[i] = "**" + p.Name
		case p.HasDefault:
			parts[i] = fmt.Sprintf("%s=%v", p.Name, p.Default)
		default:
			parts[i] = p.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Bind resolves args against the signature. Kw values are keyword arguments and must
// follow every positional argument. Unfilled parameters take their defaults;
// VarPositional defaults to []any{} and VarKeyword to map[string]any{}.
func (s *Signature) Bind(args ...any) (Args, error) {
	var positional []any
	var keywords []Named
	for i, a := range args {
		if kw, ok := a.(Named); ok {
			keywords = append(keywords, kw)
			continue
		}
		if len(keywords) > 0 {
			return nil, fmt.Errorf("%w: positional argument %d follows keyword argument", ErrBinding, i)
		}
		positional = append(positional, a)
	}

	bound := make(Args, len(s.params))

	for i := 0; i < len(positional) && i < s.numPositional; i++ {
		bound[s.params[i].Name] = positional[i]
	}
	if len(positional) > s.numPositional {
		if s.varPos < 0 {
			return nil, fmt.Errorf("%w: takes %d positional arguments but %d were given", ErrBinding, s.numPositional, len(positional))
		}
		bound[s.params[s.varPos].Name] = append([]any{}, positional[s.numPositional:]...)
	}

	var extra map[string]any
	for _, kw := range keywords {
		if i, ok := s.index[kw.Name]; ok && (s.params[i].Kind == PositionalOrKeyword || s.params[i].Kind == KeywordOnlyKind) {
			if _, dup := bound[kw.Name]; dup {
				return nil, fmt.Errorf("%w: multiple values for argument %q", ErrBinding, kw.Name)
			}
			bound[kw.Name] = kw.Value
			continue
		}
		if s.varKw < 0 {
			return nil, fmt.Errorf("%w: unexpected keyword argument %q", ErrBinding, kw.Name)
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		if _, dup := extra[kw.Name]; dup {
			return nil, fmt.Errorf("%w: multiple values for argument %q", ErrBinding, kw.Name)
		}
		extra[kw.Name] = kw.Value
	}

	var missing []string
	for _, p := range s.params {
		if _, ok := bound[p.Name]; ok {
			continue
		}
		switch {
		case p.Kind == VarPositionalKind:
			bound[p.Name] = []any{}
		case p.Kind == VarKeywordKind:
			if extra == nil {
				extra = make(map[string]any)
			}
			bound[p.Name] = extra
		case p.HasDefault:
			bound[p.Name] = p.Default
		default:
			missing = append(missing, strconv.Quote(p.Name))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required arguments: %s", ErrBinding, strings.Join(missing, ", "))
	}
	return bound, nil
}
