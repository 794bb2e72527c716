package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/pkg/types"
)

func TestStageReadYourWrites(t *testing.T) {
	e := testEngine(t)
	writer := testSession(t, e)
	reader := testSession(t, e)

	token, err := e.Stage(writer)
	require.NoError(t, err)

	_, err = e.Add(writer, token, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)

	// The staging session reads its own buffered write.
	got, err := e.Get(writer, token, Request{Keys: []string{"name"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, got[1]["name"])

	// Other sessions see nothing until commit.
	got, err = e.Get(reader, "", Request{Keys: []string{"name"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCommitPublishes(t *testing.T) {
	e := testEngine(t)
	writer := testSession(t, e)
	reader := testSession(t, e)

	token, err := e.Stage(writer)
	require.NoError(t, err)
	_, err = e.Add(writer, token, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)
	_, err = e.Add(writer, token, Request{Keys: []string{"age"}, Value: types.Int(36), Records: []int64{1}})
	require.NoError(t, err)

	require.NoError(t, e.Commit(writer, token))

	got, err := e.Get(reader, "", Request{Records: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, got[1]["name"])
	assert.Equal(t, []types.Value{types.Int(36)}, got[1]["age"])

	// The token is spent.
	assert.ErrorIs(t, e.Commit(writer, token), ErrUnknownTransaction)
}

func TestAbortDiscards(t *testing.T) {
	e := testEngine(t)
	cred := testSession(t, e)

	token, err := e.Stage(cred)
	require.NoError(t, err)
	_, err = e.Add(cred, token, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)

	require.NoError(t, e.Abort(cred, token))

	got, err := e.Get(cred, "", Request{Keys: []string{"name"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, e.Abort(cred, token), ErrUnknownTransaction)
}

func TestNestedStage(t *testing.T) {
	e := testEngine(t)
	cred := testSession(t, e)

	_, err := e.Stage(cred)
	require.NoError(t, err)

	_, err = e.Stage(cred)
	assert.ErrorIs(t, err, ErrNestedTransaction)
}

// First committer wins: a staged write to a (record, key) pair that
// received a committed row after staging began fails at commit.
func TestCommitConflict(t *testing.T) {
	e := testEngine(t)
	first := testSession(t, e)
	second := testSession(t, e)

	firstToken, err := e.Stage(first)
	require.NoError(t, err)
	secondToken, err := e.Stage(second)
	require.NoError(t, err)

	_, err = e.Add(first, firstToken, Request{Keys: []string{"state"}, Value: types.String("open"), Records: []int64{1}})
	require.NoError(t, err)
	_, err = e.Add(second, secondToken, Request{Keys: []string{"state"}, Value: types.String("closed"), Records: []int64{1}})
	require.NoError(t, err)

	require.NoError(t, e.Commit(first, firstToken))
	assert.ErrorIs(t, e.Commit(second, secondToken), types.ErrTransactionConflict)

	// The loser's work is discarded and its session is back in
	// autocommit: staging again succeeds.
	got, err := e.Get(second, "", Request{Keys: []string{"state"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("open")}, got[1]["state"])

	_, err = e.Stage(second)
	assert.NoError(t, err)
}

// An autocommit write landing after staging conflicts the same way a
// committed transaction does.
func TestCommitConflictWithAutocommitWrite(t *testing.T) {
	e := testEngine(t)
	staged := testSession(t, e)
	auto := testSession(t, e)

	token, err := e.Stage(staged)
	require.NoError(t, err)
	_, err = e.Add(staged, token, Request{Keys: []string{"state"}, Value: types.String("open"), Records: []int64{1}})
	require.NoError(t, err)

	_, err = e.Add(auto, "", Request{Keys: []string{"state"}, Value: types.String("closed"), Records: []int64{1}})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Commit(staged, token), types.ErrTransactionConflict)

	got, err := e.Get(auto, "", Request{Keys: []string{"state"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("closed")}, got[1]["state"])
}

// Writes to disjoint (record, key) pairs never conflict.
func TestCommitDisjointPairs(t *testing.T) {
	e := testEngine(t)
	first := testSession(t, e)
	second := testSession(t, e)

	firstToken, err := e.Stage(first)
	require.NoError(t, err)
	secondToken, err := e.Stage(second)
	require.NoError(t, err)

	_, err = e.Add(first, firstToken, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)
	_, err = e.Add(second, secondToken, Request{Keys: []string{"name"}, Value: types.String("grace"), Records: []int64{2}})
	require.NoError(t, err)

	require.NoError(t, e.Commit(first, firstToken))
	require.NoError(t, e.Commit(second, secondToken))
}

// A record id allocated inside a staged transaction stays reserved until
// the transaction ends, so concurrent allocations cannot collide.
func TestStagedRecordReservation(t *testing.T) {
	e := testEngine(t)
	staged := testSession(t, e)
	auto := testSession(t, e)

	token, err := e.Stage(staged)
	require.NoError(t, err)

	stagedIDs, err := e.Add(staged, token, Request{Keys: []string{"name"}, Value: types.String("ada")})
	require.NoError(t, err)
	require.Len(t, stagedIDs, 1)

	autoIDs, err := e.Add(auto, "", Request{Keys: []string{"name"}, Value: types.String("grace")})
	require.NoError(t, err)
	require.Len(t, autoIDs, 1)
	assert.NotEqual(t, stagedIDs[0], autoIDs[0])

	require.NoError(t, e.Commit(staged, token))

	got, err := e.Get(staged, "", Request{Keys: []string{"name"}, Records: []int64{stagedIDs[0], autoIDs[0]}})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.String("ada")}, got[stagedIDs[0]]["name"])
	assert.Equal(t, []types.Value{types.String("grace")}, got[autoIDs[0]]["name"])
}

// Logout drops any staged transaction along with the session.
func TestLogoutDropsTransaction(t *testing.T) {
	e := testEngine(t)
	cred := testSession(t, e)

	token, err := e.Stage(cred)
	require.NoError(t, err)
	_, err = e.Add(cred, token, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)

	require.NoError(t, e.Logout(cred, ""))

	other := testSession(t, e)
	got, err := e.Get(other, "", Request{Keys: []string{"name"}, Records: []int64{1}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Historical reads ignore staged writes even inside the staging session.
func TestStagedWritesInvisibleToTimeTravel(t *testing.T) {
	e := testEngine(t)
	cred := testSession(t, e)

	token, err := e.Stage(cred)
	require.NoError(t, err)
	_, err = e.Add(cred, token, Request{Keys: []string{"name"}, Value: types.String("ada"), Records: []int64{1}})
	require.NoError(t, err)

	future := testBase + 1_000_000_000
	got, err := e.Get(cred, token, Request{Keys: []string{"name"}, Records: []int64{1}, Time: &future})
	require.NoError(t, err)
	assert.Empty(t, got)
}
