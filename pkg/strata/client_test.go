package strata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// invocation records one Invoke call observed by the fake transport.
type invocation struct {
	method string
	params []json.RawMessage
	cred   types.Credential
	token  types.Token
}

// fakeInvoker is an in-memory types.Invoker that records every call and
// serves canned responses per method.
type fakeInvoker struct {
	mu        sync.Mutex
	calls     []invocation
	results   map[string]json.RawMessage
	errs      map[string]error
	loginErr  error
	stages    int
	closed    bool
	loggedOut bool
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		results: map[string]json.RawMessage{},
		errs:    map[string]error{},
	}
}

func (f *fakeInvoker) Login(_ context.Context, _, _, _ string) (types.Credential, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "cred-1", nil
}

func (f *fakeInvoker) Logout(_ context.Context, _ types.Credential, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	return nil
}

func (f *fakeInvoker) Invoke(_ context.Context, method string, params []json.RawMessage, cred types.Credential, token types.Token) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, invocation{method: method, params: params, cred: cred, token: token})
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	if raw, ok := f.results[method]; ok {
		return raw, nil
	}
	if method == "stage" {
		f.stages++
		return json.RawMessage(fmt.Sprintf(`{"token":"tok-%d"}`, f.stages)), nil
	}
	return json.RawMessage("null"), nil
}

func (f *fakeInvoker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeInvoker) last() invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testClient(t *testing.T) (*Client, *fakeInvoker) {
	t.Helper()
	fake := newFakeInvoker()
	client, err := NewWithInvoker(context.Background(), types.Config{
		Address:  "test",
		Username: "tester",
	}, fake)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, fake
}

func TestGetKeyRecord(t *testing.T) {
	client, fake := testClient(t)
	fake.results["getKeyRecord"] = json.RawMessage(`{"1":{"name":[{"type":"string","value":"ada"}]}}`)

	ds, err := client.Get(context.Background(), NewArgs().Key("name").Record(1))
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, ds[1]["name"])

	got := fake.last()
	assert.Equal(t, "getKeyRecord", got.method)
	require.Len(t, got.params, 2)
	assert.JSONEq(t, `"name"`, string(got.params[0]))
	assert.JSONEq(t, `1`, string(got.params[1]))
	assert.Equal(t, types.Credential("cred-1"), got.cred)
	assert.Equal(t, types.NoToken, got.token)
}

func TestSelectKeysRecordsTime(t *testing.T) {
	client, fake := testClient(t)
	fake.results["selectKeysRecordsTime"] = json.RawMessage(`{}`)

	_, err := client.Select(context.Background(), NewArgs().
		Keys("name", "age").
		Records(1, 2).
		Time(types.Micros(1700000000000000)))
	require.NoError(t, err)

	got := fake.last()
	assert.Equal(t, "selectKeysRecordsTime", got.method)
	require.Len(t, got.params, 3)
	assert.JSONEq(t, `["name","age"]`, string(got.params[0]))
	assert.JSONEq(t, `[1,2]`, string(got.params[1]))
	assert.JSONEq(t, `1700000000000000`, string(got.params[2]))
}

// Phrase timestamps travel as strings; the remote side resolves them.
func TestGetCclTimestr(t *testing.T) {
	client, fake := testClient(t)
	fake.results["getCclTimestr"] = json.RawMessage(`{}`)

	_, err := client.Get(context.Background(), NewArgs().
		Criteria("age > 30").
		Time(types.Phrase("last week")))
	require.NoError(t, err)

	got := fake.last()
	assert.Equal(t, "getCclTimestr", got.method)
	require.Len(t, got.params, 2)
	assert.JSONEq(t, `"age > 30"`, string(got.params[0]))
	assert.JSONEq(t, `"last week"`, string(got.params[1]))
}

// The dynamically typed value parameter is the only one that travels in
// tagged wire form.
func TestAddEncodesValue(t *testing.T) {
	client, fake := testClient(t)
	fake.results["addKeyValueRecord"] = json.RawMessage(`[1]`)

	ids, err := client.Add(context.Background(), NewArgs().Key("age").Value(36).Record(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	got := fake.last()
	assert.Equal(t, "addKeyValueRecord", got.method)
	require.Len(t, got.params, 3)
	assert.JSONEq(t, `{"type":"integer","value":36}`, string(got.params[1]))
}

func TestSelectorDispatch(t *testing.T) {
	client, fake := testClient(t)
	fake.results["setKeyValueRecord"] = json.RawMessage(`null`)
	fake.results["setKeyValueCcl"] = json.RawMessage(`null`)

	err := client.Set(context.Background(), NewArgs().Key("state").Value("done").Selector(7))
	require.NoError(t, err)
	assert.Equal(t, "setKeyValueRecord", fake.last().method)

	err = client.Set(context.Background(), NewArgs().Key("state").Value("done").Selector("state = open"))
	require.NoError(t, err)
	assert.Equal(t, "setKeyValueCcl", fake.last().method)
}

// Argument errors surface before any network interaction.
func TestArgumentErrorsAreLocal(t *testing.T) {
	client, fake := testClient(t)

	_, err := client.Get(context.Background(), NewArgs().Key("a").Keys("b").Record(1))
	assert.ErrorIs(t, err, types.ErrAmbiguousArguments)

	_, err = client.Add(context.Background(), NewArgs().Key("a"))
	assert.ErrorIs(t, err, types.ErrMissingRequiredArguments)

	_, err = client.Get(context.Background(), NewArgs().Criteria("x = 1").Record(1))
	assert.ErrorIs(t, err, types.ErrAmbiguousArguments)

	assert.Zero(t, fake.callCount())
}

func TestNilArgs(t *testing.T) {
	client, fake := testClient(t)

	_, err := client.Get(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrMissingRequiredArguments)
	assert.Zero(t, fake.callCount())
}

func TestTransactionLifecycle(t *testing.T) {
	client, fake := testClient(t)
	fake.results["addKeyValueRecord"] = json.RawMessage(`[1]`)
	ctx := context.Background()

	assert.False(t, client.Staged())
	require.NoError(t, client.Stage(ctx))
	assert.True(t, client.Staged())

	// Calls inside the transaction carry the staged token.
	_, err := client.Add(ctx, NewArgs().Key("name").Value("ada").Record(1))
	require.NoError(t, err)
	assert.Equal(t, types.Token("tok-1"), fake.last().token)

	require.NoError(t, client.Commit(ctx))
	assert.False(t, client.Staged())
	commit := fake.last()
	assert.Equal(t, "commit", commit.method)
	assert.Equal(t, types.Token("tok-1"), commit.token)

	// Back in autocommit, calls carry no token.
	_, err = client.Add(ctx, NewArgs().Key("name").Value("ada").Record(1))
	require.NoError(t, err)
	assert.Equal(t, types.NoToken, fake.last().token)
}

func TestIllegalTransitions(t *testing.T) {
	client, fake := testClient(t)
	ctx := context.Background()

	// Commit without a staged transaction is a caller error, detected
	// locally.
	err := client.Commit(ctx)
	assert.ErrorIs(t, err, types.ErrIllegalStateTransition)
	assert.Zero(t, fake.callCount())

	// Abort without a staged transaction is a no-op.
	require.NoError(t, client.Abort(ctx))
	assert.Zero(t, fake.callCount())

	require.NoError(t, client.Stage(ctx))
	err = client.Stage(ctx)
	assert.ErrorIs(t, err, types.ErrIllegalStateTransition)
}

func TestAbortDiscardsToken(t *testing.T) {
	client, fake := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.Stage(ctx))
	require.NoError(t, client.Abort(ctx))
	assert.False(t, client.Staged())

	abort := fake.last()
	assert.Equal(t, "abort", abort.method)
	assert.Equal(t, types.Token("tok-1"), abort.token)
}

// A failed commit still returns the context to autocommit; the caller
// retries the whole transaction with a fresh Stage.
func TestCommitConflictResetsState(t *testing.T) {
	client, fake := testClient(t)
	ctx := context.Background()

	fake.errs["commit"] = fmt.Errorf("%w: overlapping write", types.ErrTransactionConflict)

	require.NoError(t, client.Stage(ctx))
	err := client.Commit(ctx)
	assert.ErrorIs(t, err, types.ErrTransactionConflict)
	assert.False(t, client.Staged())

	// A fresh transaction gets a fresh token.
	require.NoError(t, client.Stage(ctx))
	assert.True(t, client.Staged())

	fake.mu.Lock()
	delete(fake.errs, "commit")
	fake.mu.Unlock()
	require.NoError(t, client.Commit(ctx))
	assert.Equal(t, types.Token("tok-2"), fake.last().token)
}

func TestFailedStageStaysAutocommit(t *testing.T) {
	client, fake := testClient(t)
	fake.errs["stage"] = errors.New("boom")

	err := client.Stage(context.Background())
	assert.Error(t, err)
	assert.False(t, client.Staged())
}

func TestLoginFailureClosesInvoker(t *testing.T) {
	fake := newFakeInvoker()
	fake.loginErr = fmt.Errorf("%w: bad password", types.ErrAuthenticationFailure)

	_, err := NewWithInvoker(context.Background(), types.Config{Address: "test", Username: "x"}, fake)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)
	assert.True(t, fake.closed)
}

func TestClose(t *testing.T) {
	client, fake := testClient(t)

	require.NoError(t, client.Close())
	assert.True(t, fake.loggedOut)
	assert.True(t, fake.closed)

	// Idempotent.
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), NewArgs().Key("name").Record(1))
	assert.ErrorIs(t, err, types.ErrTransportFailure)
}
