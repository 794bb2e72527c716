package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Client implements types.Invoker over the Strata gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client StrataClient
}

var _ types.Invoker = (*Client)(nil)

// DialOptions configures Dial.
type DialOptions struct {
	// Timeout, when non-zero, makes Dial block until the connection is
	// ready or the timeout expires. Zero dials lazily.
	Timeout time.Duration
}

// Dial connects to a Strata server.
func Dial(target string, opts DialOptions) (*Client, error) {
	cc, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", types.ErrTransportFailure, target, err)
	}
	if opts.Timeout > 0 {
		if err := waitReady(cc, opts.Timeout); err != nil {
			cc.Close()
			return nil, fmt.Errorf("%w: dial %s: %v", types.ErrTransportFailure, target, err)
		}
	}
	return NewClient(cc), nil
}

// waitReady drives the lazy connection until it reaches Ready.
func waitReady(cc *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cc.Connect()
	for {
		state := cc.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !cc.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

// NewClient wraps an existing connection, e.g. a bufconn in tests.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewStrataClient(cc)}
}

// Close releases the connection. Safe regardless of transaction state.
func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Login performs the session handshake.
func (c *Client) Login(ctx context.Context, username, password, environment string) (types.Credential, error) {
	payload, err := json.Marshal(wire.LoginRequest{
		Username:    username,
		Password:    password,
		Environment: environment,
	})
	if err != nil {
		return "", err
	}
	reply, err := c.client.Login(ctx, wrapperspb.Bytes(payload))
	if err != nil {
		return "", mapRPC(err)
	}
	var resp wire.LoginResponse
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return types.Credential(resp.Credential), nil
}

// Logout releases the credential.
func (c *Client) Logout(ctx context.Context, cred types.Credential, environment string) error {
	payload, err := json.Marshal(wire.LogoutRequest{
		Credential:  string(cred),
		Environment: environment,
	})
	if err != nil {
		return err
	}
	if _, err := c.client.Logout(ctx, wrapperspb.Bytes(payload)); err != nil {
		return mapRPC(err)
	}
	return nil
}

// Invoke calls one remote operation variant.
func (c *Client) Invoke(ctx context.Context, method string, params []json.RawMessage, cred types.Credential, txn types.Token) (json.RawMessage, error) {
	payload, err := json.Marshal(wire.Request{
		Method:      method,
		Params:      params,
		Credential:  string(cred),
		Transaction: string(txn),
	})
	if err != nil {
		return nil, err
	}
	reply, err := c.client.Call(ctx, wrapperspb.Bytes(payload))
	if err != nil {
		return nil, mapRPC(err)
	}
	return reply.GetValue(), nil
}
