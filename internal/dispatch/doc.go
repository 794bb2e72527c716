// Package dispatch maps each (operation family, argument shape) pair to
// exactly one remote operation descriptor: the wire method name and the
// order of its parameter slots. Entries are pure data. The table is
// exhaustive over every shape the resolver can produce and non-overlapping
// within a family; both properties are asserted by tests, not computed at
// runtime. The serving side iterates the same table to register handlers,
// so client and server agree on the variant surface by construction.
package dispatch
