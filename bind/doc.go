// Package bind resolves call arguments against a declared parameter list.
//
// Go functions carry no runtime parameter names or defaults, so a memoized callable
// declares them once with a Signature. Binding a call produces Args: a map from
// parameter name to effective value with every default filled in. Two calls that
// differ only in positional/keyword style, or in passing a default explicitly,
// bind to equal Args.
//
//	sig := bind.MustSignature(bind.Required("n"), bind.Optional("base", 10))
//	args, err := sig.Bind(255, bind.Kw("base", 16))
package bind
