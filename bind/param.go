package bind

// Kind classifies how a parameter can be filled.
type Kind int

const (
	// PositionalOrKeyword parameters take a positional argument or a keyword.
	PositionalOrKeyword Kind = iota
	// VarPositionalKind collects surplus positional arguments into []any.
	VarPositionalKind
	// KeywordOnlyKind parameters can only be passed with Kw.
	KeywordOnlyKind
	// VarKeywordKind collects unknown keywords into map[string]any.
	VarKeywordKind
)

func (k Kind) String() string {
	switch k {
	case PositionalOrKeyword:
		return "positional"
	case KeywordOnlyKind:
		return "keyword-only"
	case VarPositionalKind:
		return "var-positional"
	case VarKeywordKind:
		return "var-keyword"
	default:
		return "unknown"
	}
}

// Param is one declared parameter.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Required declares a positional-or-keyword parameter without default.
func Required(name string) Param {
	return Param{Name: name, Kind: PositionalOrKeyword}
}

// Optional declares a positional-or-keyword parameter with a default.
func Optional(name string, def any) Param {
	return Param{Name: name, Kind: PositionalOrKeyword, Default: def, HasDefault: true}
}

// KeywordOnly declares a required keyword-only parameter.
func KeywordOnly(name string) Param {
	return Param{Name: name, Kind: KeywordOnlyKind}
}

// KeywordOnlyOptional declares a keyword-only parameter with a default.
func KeywordOnlyOptional(name string, def any) Param {
	return Param{Name: name, Kind: KeywordOnlyKind, Default: def, HasDefault: true}
}

// VarPositional declares the parameter collecting surplus positional arguments.
func VarPositional(name string) Param {
	return Param{Name: name, Kind: VarPositionalKind}
}

// VarKeyword declares the parameter collecting surplus keyword arguments.
func VarKeyword(name string) Param {
	return Param{Name: name, Kind: VarKeywordKind}
}

// Named is a keyword argument. Build it with Kw.
type Named struct {
	Name  string
	Value any
}

// Kw passes value to the parameter called name.
func Kw(name string, value any) Named {
	return Named{Name: name, Value: value}
}
