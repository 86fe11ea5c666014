package db_test

import (
	"context"
	"testing"

	"daynight/db"
	"daynight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignCallOnlyWhilePending(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateCall(ctx, &models.Call{Caller: "Bob", Message: "break-in", Status: models.CallPending})
	require.NoError(t, err)

	require.NoError(t, store.AssignCall(ctx, id, "user-1"))

	err = store.AssignCall(ctx, id, "user-2")
	assert.Equal(t, db.ErrAlreadyAssigned, err)

	call, err := store.GetCall(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CallAssigned, call.Status)
	assert.Equal(t, "user-1", call.AssignedTo)

	assert.Equal(t, db.ErrNotFound, store.AssignCall(ctx, "missing", "user-1"))
}

func TestListsAreNewestFirst(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		_, err := store.CreateCall(ctx, &models.Call{Caller: "Bob", Message: msg, Status: models.CallPending})
		require.NoError(t, err)
	}

	calls, err := store.GetAllCalls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 3)
	assert.Equal(t, "third", calls[0].Message)
	assert.Equal(t, "second", calls[1].Message)
	assert.Equal(t, "first", calls[2].Message)
}

func TestDeletesAreIdempotent(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateReport(ctx, &models.Report{Title: "Incident", Description: "details", Author: "J. Smith"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteReport(ctx, id))
	require.NoError(t, store.DeleteReport(ctx, id))

	_, err = store.GetReport(ctx, id)
	assert.Equal(t, db.ErrNotFound, err)
}

func TestExportAttachesDocumentIDs(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateUser(ctx, &models.User{Username: "smith", Display: "J. Smith", Password: "pw", Role: "officer"})
	require.NoError(t, err)

	docs, err := store.ExportCollection(ctx, db.ColUsers)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0]["id"])
	assert.Equal(t, "smith", docs[0]["username"])
}

func TestReplaceCollectionMintsFreshIDs(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	_, err := store.CreateCall(ctx, &models.Call{Caller: "Old", Message: "existing", Status: models.CallPending})
	require.NoError(t, err)

	err = store.ReplaceCollection(ctx, db.ColCalls, []map[string]interface{}{
		{"id": "dump-1", "caller": "Eve", "message": "restored", "status": "pending"},
	})
	require.NoError(t, err)

	calls, err := store.GetAllCalls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "Eve", calls[0].Caller)
	assert.NotEqual(t, "dump-1", calls[0].ID)
}

func TestReplaceCollectionRejectsMalformedDocuments(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	err := store.ReplaceCollection(ctx, db.ColCalls, []map[string]interface{}{
		{"caller": "Eve", "message": "bad", "status": 42},
	})
	assert.Error(t, err)
}

func TestUnknownCollectionsRoundTripThroughExtras(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	err := store.ReplaceCollection(ctx, "custom", []map[string]interface{}{
		{"id": "dump-1", "note": "kept as-is"},
	})
	require.NoError(t, err)

	docs, err := store.ExportCollection(ctx, "custom")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "kept as-is", docs[0]["note"])
	assert.NotEqual(t, "dump-1", docs[0]["id"])
}
