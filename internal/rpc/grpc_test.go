package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/internal/wire"
	"github.com/mesh-intelligence/strata/pkg/types"
)

const rpcTestBase = int64(1_700_000_000_000_000)

// testClient runs an engine-backed server on a bufconn and returns a
// connected client. The engine clock advances one millisecond per call.
func testClient(t *testing.T, users map[string]string) *Client {
	t.Helper()

	var tick int64
	engine, err := store.Open(store.Config{
		DataDir: t.TempDir(),
		Users:   users,
		Now: func() time.Time {
			tick++
			return time.UnixMicro(rpcTestBase + tick*1000)
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterStrataServer(gs, &Server{Engine: engine})
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	client := NewClient(cc)
	t.Cleanup(func() { client.Close() })
	return client
}

func login(t *testing.T, c *Client) types.Credential {
	t.Helper()
	cred, err := c.Login(context.Background(), "tester", "", "")
	require.NoError(t, err)
	require.NotEmpty(t, cred)
	return cred
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func mustEncode(t *testing.T, v types.Value) json.RawMessage {
	t.Helper()
	raw, err := wire.Encode(v)
	require.NoError(t, err)
	return raw
}

// A listener that accepts TCP but never speaks gRPC keeps the connection
// from becoming ready, so a bounded dial must give up.
func TestDialTimeoutExpires(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	_, err = Dial(lis.Addr().String(), DialOptions{Timeout: 200 * time.Millisecond})
	assert.ErrorIs(t, err, types.ErrTransportFailure)
}

func TestAddGetRoundTrip(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)
	ctx := context.Background()

	raw, err := c.Invoke(ctx, "addKeyValueRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustEncode(t, types.String("ada")),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	require.NoError(t, err)

	ids, err := wire.DecodeRecords(raw)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	raw, err = c.Invoke(ctx, "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	require.NoError(t, err)

	ds, err := wire.DecodeDataset(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, ds[1]["name"])
}

func TestPhraseTimestampResolvedServerSide(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)
	ctx := context.Background()

	_, err := c.Invoke(ctx, "addKeyValueRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustEncode(t, types.String("ada")),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	require.NoError(t, err)

	// The phrase travels as a JSON string and resolves on the server.
	raw, err := c.Invoke(ctx, "getKeyRecordTimestr", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
		mustMarshal(t, "now"),
	}, cred, types.NoToken)
	require.NoError(t, err)

	ds, err := wire.DecodeDataset(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, ds[1]["name"])
}

func TestLoginFailure(t *testing.T) {
	c := testClient(t, map[string]string{"ada": "secret"})

	_, err := c.Login(context.Background(), "ada", "wrong", "")
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)
}

func TestUnknownCredential(t *testing.T) {
	c := testClient(t, nil)

	_, err := c.Invoke(context.Background(), "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
	}, "no-such-credential", types.NoToken)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)
}

func TestLogoutInvalidatesCredential(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx, cred, ""))

	_, err := c.Invoke(ctx, "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailure)
}

func TestUnknownMethod(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)

	_, err := c.Invoke(context.Background(), "frobnicate", nil, cred, types.NoToken)
	assert.ErrorIs(t, err, types.ErrUnsupportedShape)
}

func TestParameterCountMismatch(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)

	_, err := c.Invoke(context.Background(), "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
	}, cred, types.NoToken)
	assert.ErrorIs(t, err, types.ErrMissingRequiredArguments)
}

func TestCommitWithoutStage(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)

	_, err := c.Invoke(context.Background(), "commit", nil, cred, types.Token("no-such-token"))
	assert.ErrorIs(t, err, types.ErrIllegalStateTransition)
}

func stage(t *testing.T, c *Client, cred types.Credential) types.Token {
	t.Helper()
	raw, err := c.Invoke(context.Background(), "stage", nil, cred, types.NoToken)
	require.NoError(t, err)
	var resp wire.StageResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotEmpty(t, resp.Token)
	return types.Token(resp.Token)
}

func TestStageCommit(t *testing.T) {
	c := testClient(t, nil)
	cred := login(t, c)
	ctx := context.Background()

	token := stage(t, c, cred)

	_, err := c.Invoke(ctx, "addKeyValueRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustEncode(t, types.String("ada")),
		mustMarshal(t, int64(1)),
	}, cred, token)
	require.NoError(t, err)

	// Not visible outside the transaction yet.
	raw, err := c.Invoke(ctx, "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	require.NoError(t, err)
	ds, err := wire.DecodeDataset(raw)
	require.NoError(t, err)
	assert.Empty(t, ds)

	_, err = c.Invoke(ctx, "commit", nil, cred, token)
	require.NoError(t, err)

	raw, err = c.Invoke(ctx, "getKeyRecord", []json.RawMessage{
		mustMarshal(t, "name"),
		mustMarshal(t, int64(1)),
	}, cred, types.NoToken)
	require.NoError(t, err)
	ds, err = wire.DecodeDataset(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, ds[1]["name"])
}

func TestCommitConflictMapsToSentinel(t *testing.T) {
	c := testClient(t, nil)
	ctx := context.Background()

	firstCred := login(t, c)
	secondCred := login(t, c)

	firstToken := stage(t, c, firstCred)
	secondToken := stage(t, c, secondCred)

	add := func(cred types.Credential, token types.Token, v string) error {
		_, err := c.Invoke(ctx, "addKeyValueRecord", []json.RawMessage{
			mustMarshal(t, "state"),
			mustEncode(t, types.String(v)),
			mustMarshal(t, int64(1)),
		}, cred, token)
		return err
	}
	require.NoError(t, add(firstCred, firstToken, "open"))
	require.NoError(t, add(secondCred, secondToken, "closed"))

	_, err := c.Invoke(ctx, "commit", nil, firstCred, firstToken)
	require.NoError(t, err)

	_, err = c.Invoke(ctx, "commit", nil, secondCred, secondToken)
	assert.ErrorIs(t, err, types.ErrTransactionConflict)
}
