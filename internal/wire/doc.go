// Package wire implements the value codec and the JSON payload forms
// exchanged with the server: tagged values, request envelopes, and the
// per-family result encodings. Both the client driver and the embedded
// server use this package, so the two sides cannot drift apart.
package wire
