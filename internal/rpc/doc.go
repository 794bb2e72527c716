// Package rpc carries resolved operations over gRPC. The client side
// implements types.Invoker; the server side exposes a store.Engine. Both
// exchange JSON envelopes (internal/wire) inside protobuf wrapper types,
// so no codegen toolchain is needed. Remote failures travel as gRPC
// status codes and are mapped back to the driver's sentinel errors.
package rpc
