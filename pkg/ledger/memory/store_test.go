package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/pseudomuto/deploykeeper/pkg/ledger"
	"github.com/pseudomuto/deploykeeper/pkg/ledger/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMissingKey(t *testing.T) {
	store := memory.New()

	found, err := store.Lookup(context.Background(), "SCT-1", "a_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSuccessIsTerminal(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.Record{
		DeploymentID: "SCT-1",
		ScriptName:   "a_2024_01_01_v1.sql",
		Status:       ledger.StatusSuccess,
		DeployedAt:   time.Now().UTC(),
	}))

	found, err := store.Lookup(ctx, "SCT-1", "a_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFailedIsNotTerminal(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.Record{
		DeploymentID:  "SCT-1",
		ScriptName:    "a_2024_01_01_v1.sql",
		Status:        ledger.StatusFailed,
		FailureReason: "boom",
	}))

	found, err := store.Lookup(ctx, "SCT-1", "a_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAlreadyExecutedOverwriteStaysTerminal(t *testing.T) {
	// The routine already-executed audit write replaces the SUCCESS row;
	// the key must remain terminal on the next encounter.
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.Record{
		DeploymentID: "SCT-1",
		ScriptName:   "a_2024_01_01_v1.sql",
		Status:       ledger.StatusSuccess,
	}))
	require.NoError(t, store.Put(ctx, ledger.Record{
		DeploymentID:  "SCT-1",
		ScriptName:    "a_2024_01_01_v1.sql",
		Status:        ledger.StatusIgnored,
		FailureReason: ledger.ReasonAlreadyExecuted,
	}))

	found, err := store.Lookup(ctx, "SCT-1", "a_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKeysAreScopedByDeployment(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.Record{
		DeploymentID: "SCT-1",
		ScriptName:   "a_2024_01_01_v1.sql",
		Status:       ledger.StatusSuccess,
	}))

	found, err := store.Lookup(ctx, "SCT-2", "a_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecords(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.Record{DeploymentID: "SCT-1", ScriptName: "a.sql", Status: ledger.StatusSuccess}))
	require.NoError(t, store.Put(ctx, ledger.Record{DeploymentID: "SCT-2", ScriptName: "b.sql", Status: ledger.StatusFailed}))

	all, err := store.Records(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := store.Records(ctx, "SCT-1")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "a.sql", one[0].ScriptName)
}
