//go:build integration

package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/internal/store/pgstore"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
)

// newTestStore connects to DEPO_TEST_DSN (a scratch Postgres database) and
// resets the three tables it owns before returning. Run with
// `go test -tags integration ./internal/store/pgstore/...`.
func newTestStore(t *testing.T) *pgstore.Store {
	t.Helper()

	dsn := os.Getenv("DEPO_TEST_DSN")
	if dsn == "" {
		t.Skip("DEPO_TEST_DSN not set; skipping relational store integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS records, users, settings")
	require.NoError(t, err)

	s, err := pgstore.New(ctx, pool)
	require.NoError(t, err)

	return s
}

func TestPgstoreSettingsBootstrapsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Settings(ctx)
	require.NoError(t, err)

	second, err := s.Settings(ctx)
	require.NoError(t, err)

	require.Equal(t, first.PublicKey, second.PublicKey)
}

func TestPgstoreUserAndRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	id, err := depocrypto.NewAccountID()
	require.NoError(t, err)

	u := store.User{ID: store.UserID(id), PublicKey: pub}
	require.NoError(t, s.InsertUser(ctx, u))

	data := []byte("cafebabe")
	receipt := store.Receipt(depocrypto.Digest(u.ID[:], data))
	require.NoError(t, s.InsertRecord(ctx, store.Record{Receipt: receipt, UserID: u.ID, Data: data}))
	require.NoError(t, s.InsertRecord(ctx, store.Record{Receipt: receipt, UserID: u.ID, Data: data}))

	receipts, err := s.ReceiptsOf(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	require.NoError(t, s.RemoveUser(ctx, u.ID))

	rec, err := s.RecordByReceipt(ctx, receipt)
	require.NoError(t, err)
	require.Nil(t, rec)
}
