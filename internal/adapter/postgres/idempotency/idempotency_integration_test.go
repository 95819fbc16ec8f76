//go:build integration

package idempotency_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/repair-desk/internal/adapter/postgres/idempotency"
	"github.com/alanyang/repair-desk/internal/testutil"
)

func TestIdempotency_FirstResultWins(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	r := idempotency.New(pool)
	key := "create-" + uuid.NewString()

	_, ok, err := r.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Save(ctx, key, "create_task", []byte(`{"status":"success"}`)))
	require.NoError(t, r.Save(ctx, key, "create_task", []byte(`{"status":"error"}`)))

	got, ok, err := r.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"status":"success"}`, string(got))
}
