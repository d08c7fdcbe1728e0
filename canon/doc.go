// Package canon turns arbitrary Go values into stable, comparable cache keys.
//
// A key is defined by the contents of a value, not by its layout in memory:
//   - types implementing Canonical supply their own representation,
//   - sets (map[K]struct{}) and maps are order independent,
//   - slices and arrays are compared element by element,
//   - pointers, channels and funcs are compared by identity,
//   - everything else is compared by type and value.
//
// Keys are plain comparable structs and can be used directly as Go map keys.
package canon
