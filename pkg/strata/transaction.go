package strata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// The transaction context has two states. In autocommit (the initial
// state) every call carries no token and is durable on acknowledgment. In
// staged, entered via Stage, every call carries the staged token until
// Commit or Abort returns the context to autocommit. Transitions and
// token reads share the client mutex, so an in-flight call can never use
// a token from a superseded state.

// Stage begins a transaction. Subsequent calls carry the issued token
// until Commit or Abort. Staging while already staged is a caller error
// (types.ErrIllegalStateTransition); nested transactions are not
// supported. If the remote call fails the context stays in autocommit.
func (c *Client) Stage(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != types.NoToken {
		return fmt.Errorf("%w: stage while staged", types.ErrIllegalStateTransition)
	}
	raw, err := c.invoker.Invoke(ctx, "stage", nil, c.cred, types.NoToken)
	if err != nil {
		return err
	}
	var resp wire.StageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode stage response: %w", err)
	}
	c.token = types.Token(resp.Token)
	return nil
}

// Commit finalizes everything staged since Stage as one all-or-nothing
// unit. The context returns to autocommit regardless of the outcome: on
// types.ErrTransactionConflict the staged work was discarded remotely and
// the caller retries the whole sequence starting with a fresh Stage.
// Committing in autocommit is a caller error.
func (c *Client) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == types.NoToken {
		return fmt.Errorf("%w: commit without stage", types.ErrIllegalStateTransition)
	}
	token := c.token
	c.token = types.NoToken

	_, err := c.invoker.Invoke(ctx, "commit", nil, c.cred, token)
	return err
}

// Abort discards everything staged since Stage. In autocommit it is a
// no-op. The context returns to autocommit even if the remote call fails.
func (c *Client) Abort(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == types.NoToken {
		return nil
	}
	token := c.token
	c.token = types.NoToken

	_, err := c.invoker.Invoke(ctx, "abort", nil, c.cred, token)
	return err
}

// Staged reports whether the client currently holds a transaction token.
func (c *Client) Staged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != types.NoToken
}
