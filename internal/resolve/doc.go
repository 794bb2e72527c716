// Package resolve classifies the arguments of a logical operation into a
// canonical shape. Resolution is a pure function of the supplied arguments:
// it performs no network or session side effects, and the same input always
// yields the same shape. The dispatch table (internal/dispatch) maps each
// (family, shape) pair to exactly one remote operation variant.
package resolve
