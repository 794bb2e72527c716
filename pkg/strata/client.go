package strata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/strata/internal/dispatch"
	"github.com/mesh-intelligence/strata/internal/resolve"
	"github.com/mesh-intelligence/strata/internal/rpc"
	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Client is one logical session against a Strata server: one credential,
// one transaction context, one connection.
//
// Argument resolution and dispatch are pure and reentrant, but the
// transaction context is not safe for concurrent mutation: the client
// serializes every dispatched call against Stage/Commit/Abort so no call
// can straddle a state change with a stale token.
type Client struct {
	cfg     types.Config
	invoker types.Invoker
	codec   types.Codec
	cred    types.Credential

	mu     sync.Mutex
	token  types.Token
	closed bool
}

// New dials the configured address, performs the login handshake, and
// returns a connected client.
func New(ctx context.Context, cfg types.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	invoker, err := rpc.Dial(cfg.Address, rpc.DialOptions{Timeout: cfg.DialTimeout})
	if err != nil {
		return nil, err
	}
	return NewWithInvoker(ctx, cfg, invoker)
}

// NewWithInvoker wires a custom invoker (e.g. a mock transport) and
// performs the login handshake through it. The client owns the invoker
// from here on and closes it on failure and on Close.
func NewWithInvoker(ctx context.Context, cfg types.Config, invoker types.Invoker) (*Client, error) {
	cred, err := invoker.Login(ctx, cfg.Username, cfg.Password, cfg.Env())
	if err != nil {
		invoker.Close()
		return nil, err
	}
	return &Client{
		cfg:     cfg,
		invoker: invoker,
		codec:   wire.Codec{},
		cred:    cred,
	}, nil
}

// Close logs out and releases the connection. An open transaction is
// abandoned; the connection is released regardless. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.token = types.NoToken
	c.mu.Unlock()

	// Best effort; the connection must be released either way.
	logoutErr := c.invoker.Logout(context.Background(), c.cred, c.cfg.Env())
	if err := c.invoker.Close(); err != nil {
		return err
	}
	return logoutErr
}

// Get returns the most recently added value for each selected key in the
// selected records, optionally at a past instant.
func (c *Client) Get(ctx context.Context, args *Args) (types.Dataset, error) {
	raw, err := c.call(ctx, resolve.FamilyGet, args)
	if err != nil {
		return nil, err
	}
	return wire.DecodeDataset(raw)
}

// Select returns every stored value for each selected key in the selected
// records, optionally at a past instant.
func (c *Client) Select(ctx context.Context, args *Args) (types.Dataset, error) {
	raw, err := c.call(ctx, resolve.FamilySelect, args)
	if err != nil {
		return nil, err
	}
	return wire.DecodeDataset(raw)
}

// Add appends a value under a key, into the given record(s) or a fresh
// record when none is selected. Returns the records written.
func (c *Client) Add(ctx context.Context, args *Args) ([]int64, error) {
	raw, err := c.call(ctx, resolve.FamilyAdd, args)
	if err != nil {
		return nil, err
	}
	return wire.DecodeRecords(raw)
}

// Set replaces every value under a key in the selected records.
func (c *Client) Set(ctx context.Context, args *Args) error {
	_, err := c.call(ctx, resolve.FamilySet, args)
	return err
}

// Remove deletes one value under a key from the selected records.
func (c *Client) Remove(ctx context.Context, args *Args) error {
	_, err := c.call(ctx, resolve.FamilyRemove, args)
	return err
}

// Audit returns the change history of a record, optionally narrowed to a
// key and a start/end range.
func (c *Client) Audit(ctx context.Context, args *Args) ([]types.AuditEntry, error) {
	raw, err := c.call(ctx, resolve.FamilyAudit, args)
	if err != nil {
		return nil, err
	}
	return wire.DecodeAudit(raw)
}

// Describe returns the keys holding data in the selected records.
func (c *Client) Describe(ctx context.Context, args *Args) (map[int64][]string, error) {
	raw, err := c.call(ctx, resolve.FamilyDescribe, args)
	if err != nil {
		return nil, err
	}
	return wire.DecodeKeysByRecord(raw)
}

// call resolves, dispatches, and executes one logical operation. Argument
// errors surface here, before any network interaction.
func (c *Client) call(ctx context.Context, family resolve.Family, args *Args) (json.RawMessage, error) {
	raw := args.arguments()
	shape, err := resolve.Resolve(family, raw)
	if err != nil {
		return nil, err
	}
	desc, err := dispatch.Lookup(family, shape)
	if err != nil {
		return nil, err
	}
	params, err := c.encodeParams(desc, raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("%w: client is closed", types.ErrTransportFailure)
	}
	return c.invoker.Invoke(ctx, desc.Name, params, c.cred, c.token)
}

// encodeParams orders and encodes the argument values per the
// descriptor's parameter slots. The dynamically typed value slot goes
// through the value codec; structural slots are plain JSON.
func (c *Client) encodeParams(desc dispatch.Descriptor, raw resolve.Arguments) ([]json.RawMessage, error) {
	params := make([]json.RawMessage, 0, len(desc.Params))
	for _, slot := range desc.Params {
		var (
			encoded json.RawMessage
			err     error
		)
		switch slot {
		case dispatch.ParamKey:
			encoded, err = json.Marshal(*raw.Key)
		case dispatch.ParamKeys:
			encoded, err = json.Marshal(raw.Keys)
		case dispatch.ParamRecord:
			encoded, err = json.Marshal(*raw.Record)
		case dispatch.ParamRecords:
			encoded, err = json.Marshal(raw.Records)
		case dispatch.ParamCriteria:
			encoded, err = json.Marshal(*raw.Criteria)
		case dispatch.ParamValue:
			encoded, err = c.codec.Encode(*raw.Value)
		case dispatch.ParamTimestamp:
			encoded, err = encodeTimestamp(*raw.Time)
		case dispatch.ParamStart:
			encoded, err = encodeTimestamp(*raw.Start)
		case dispatch.ParamEnd:
			encoded, err = encodeTimestamp(*raw.End)
		default:
			return nil, fmt.Errorf("%w: unhandled parameter slot %s", types.ErrUnsupportedShape, slot)
		}
		if err != nil {
			return nil, fmt.Errorf("encode parameter %s: %w", slot, err)
		}
		params = append(params, encoded)
	}
	return params, nil
}

// encodeTimestamp sends instants as microsecond numbers and phrases as
// strings; the server tells them apart by the variant name it registered.
func encodeTimestamp(ts types.Timestamp) (json.RawMessage, error) {
	if ts.Kind() == types.TimePhrase {
		return json.Marshal(ts.Phrase())
	}
	return json.Marshal(ts.Micros())
}
