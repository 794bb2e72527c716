package types

import (
	"context"
	"encoding/json"
)

// Credential is the opaque authenticated-session handle issued by the
// server at login. Its lifetime is the connection lifetime.
type Credential string

// Token is the opaque transaction handle issued when staging begins.
// NoToken marks autocommit mode.
type Token string

// NoToken is the absent transaction token carried by autocommit calls.
const NoToken Token = ""

// Invoker executes resolved remote operations. Implementations own the
// connection lifecycle and the wire protocol; the resolution engine only
// hands them a method name and encoded, ordered parameters.
//
// Invoke must preserve call ordering relative to the issuing goroutine.
// Connection-level failures are reported as errors wrapping
// ErrTransportFailure and are fatal to the connection.
type Invoker interface {
	// Login performs the session handshake and returns the credential
	// carried by every subsequent call.
	Login(ctx context.Context, username, password, environment string) (Credential, error)

	// Logout releases the credential.
	Logout(ctx context.Context, cred Credential, environment string) error

	// Invoke calls the named remote operation variant with encoded
	// parameters in descriptor order. txn is NoToken in autocommit mode.
	Invoke(ctx context.Context, method string, params []json.RawMessage, cred Credential, txn Token) (json.RawMessage, error)

	// Close releases the underlying connection. It must succeed
	// independent of transaction state.
	Close() error
}

// Codec translates between native tagged values and their wire encoding.
type Codec interface {
	Encode(v Value) (json.RawMessage, error)
	Decode(raw json.RawMessage) (Value, error)
}

// PhraseResolver turns a natural-language time phrase into an absolute
// instant (microseconds since epoch). Used on the serving side; clients
// ship phrases over the wire unresolved.
type PhraseResolver interface {
	ResolvePhrase(text string) (int64, error)
}
