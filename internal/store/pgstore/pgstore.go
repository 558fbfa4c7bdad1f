// Package pgstore is the relational implementation of store.Store: three
// tables (users, records, settings) with foreign-key cascade, queried
// through github.com/jackc/pgx/v5 with github.com/Masterminds/squirrel
// building the statements. Connection pooling and migration tooling are
// external collaborators; this package assumes a live *pgxpool.Pool and
// only creates its own three tables if they are not already present.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/depoerr"
	"github.com/blockchaincommons/go-depo/pkg/mlog"
)

const (
	tagPublicKey  = "pubkey"
	tagUserID     = "userid"
	tagReceipt    = "receipt"
	tagPrivateKey = "privkey"
)

// Store is the pgx-backed store.Store implementation.
type Store struct {
	pool   *pgxpool.Pool
	logger mlog.Logger

	defaultMaxPayloadSize            int
	defaultContinuationExpirySeconds int64
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger attaches a logger; defaults to mlog.NoneLogger.
func WithLogger(logger mlog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithDefaults sets the values used to seed the settings row the first time
// it is bootstrapped.
func WithDefaults(maxPayloadSize int, continuationExpirySeconds int64) Option {
	return func(s *Store) {
		s.defaultMaxPayloadSize = maxPayloadSize
		s.defaultContinuationExpirySeconds = continuationExpirySeconds
	}
}

// New wraps pool, creates the schema if absent, and bootstraps the single
// settings row (generating a depository keypair) if none exists yet.
func New(ctx context.Context, pool *pgxpool.Pool, opts ...Option) (*Store, error) {
	s := &Store{
		pool:                             pool,
		logger:                           &mlog.NoneLogger{},
		defaultMaxPayloadSize:            1 << 20,
		defaultContinuationExpirySeconds: 3600,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, depoerr.NewStoreError("ensure_schema", err)
	}

	if err := s.ensureSettings(ctx); err != nil {
		return nil, depoerr.NewStoreError("ensure_settings", err)
	}

	return s, nil
}

// ResetSchema drops and recreates the three tables this Store owns,
// including re-bootstrapping the settings row with a fresh depository
// keypair. Intended for administrative use (cmd/depod's /reset-db route)
// and scratch-database test setup, never for production traffic paths.
func (s *Store) ResetSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS records, users, settings"); err != nil {
		return depoerr.NewStoreError("reset_schema", err)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return depoerr.NewStoreError("reset_schema", err)
	}

	return s.ensureSettings(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS settings (
	private_key TEXT NOT NULL,
	continuation_expiry_seconds BIGINT NOT NULL,
	max_payload_size INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	public_key TEXT NOT NULL UNIQUE,
	recovery TEXT
);

CREATE INDEX IF NOT EXISTS idx_users_public_key ON users (public_key);
CREATE INDEX IF NOT EXISTS idx_users_recovery ON users (recovery);

CREATE TABLE IF NOT EXISTS records (
	receipt TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
	data BYTEA NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_user_id ON records (user_id);
`

	_, err := s.pool.Exec(ctx, ddl)

	return err
}

func (s *Store) ensureSettings(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM settings").Scan(&count); err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	_, priv, err := depocrypto.GenerateKeypair()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO settings (private_key, continuation_expiry_seconds, max_payload_size) VALUES ($1, $2, $3)",
		encodePrivateKey(priv), s.defaultContinuationExpirySeconds, s.defaultMaxPayloadSize)

	return err
}

func (s *Store) Settings(ctx context.Context) (store.Settings, error) {
	var (
		privText       string
		expirySeconds  int64
		maxPayloadSize int
	)

	err := s.pool.QueryRow(ctx,
		"SELECT private_key, continuation_expiry_seconds, max_payload_size FROM settings LIMIT 1",
	).Scan(&privText, &expirySeconds, &maxPayloadSize)
	if err != nil {
		return store.Settings{}, depoerr.NewStoreError("settings", err)
	}

	priv, err := decodePrivateKey(privText)
	if err != nil {
		return store.Settings{}, depoerr.NewStoreError("settings", err)
	}

	return store.Settings{
		PrivateKey:                priv,
		PublicKey:                 priv.Public(),
		ContinuationExpirySeconds: expirySeconds,
		MaxPayloadSize:            maxPayloadSize,
	}, nil
}

func (s *Store) LookupUserByPublicKey(ctx context.Context, pk depocrypto.PublicKey) (*store.User, error) {
	return s.lookupUserWhere(ctx, sq.Eq{"public_key": encodePublicKey(pk)})
}

func (s *Store) LookupUserByID(ctx context.Context, id store.UserID) (*store.User, error) {
	return s.lookupUserWhere(ctx, sq.Eq{"user_id": encodeUserID(id)})
}

func (s *Store) LookupUserByRecovery(ctx context.Context, recovery string) (*store.User, error) {
	return s.lookupUserWhere(ctx, sq.Eq{"recovery": recovery})
}

func (s *Store) lookupUserWhere(ctx context.Context, pred sq.Eq) (*store.User, error) {
	query, args, err := sq.Select("user_id", "public_key", "recovery").
		From("users").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, depoerr.NewStoreError("lookup_user", err)
	}

	var (
		userIDText string
		pubKeyText string
		recovery   *string
	)

	err = s.pool.QueryRow(ctx, query, args...).Scan(&userIDText, &pubKeyText, &recovery)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, depoerr.NewStoreError("lookup_user", err)
	}

	u, err := decodeUser(userIDText, pubKeyText, recovery)
	if err != nil {
		return nil, depoerr.NewStoreError("lookup_user", err)
	}

	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, u store.User) error {
	var recovery any
	if u.Recovery != nil {
		recovery = *u.Recovery
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO users (user_id, public_key, recovery) VALUES ($1, $2, $3)",
		encodeUserID(u.ID), encodePublicKey(u.PublicKey), recovery)
	if err != nil {
		return depoerr.NewStoreError("insert_user", err)
	}

	return nil
}

func (s *Store) InsertRecord(ctx context.Context, r store.Record) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO records (receipt, user_id, data) VALUES ($1, $2, $3) ON CONFLICT (receipt) DO NOTHING",
		encodeReceipt(r.Receipt), encodeUserID(r.UserID), r.Data)
	if err != nil {
		return depoerr.NewStoreError("insert_record", err)
	}

	return nil
}

func (s *Store) ReceiptsOf(ctx context.Context, id store.UserID) (map[store.Receipt]struct{}, error) {
	rows, err := s.pool.Query(ctx, "SELECT receipt FROM records WHERE user_id = $1", encodeUserID(id))
	if err != nil {
		return nil, depoerr.NewStoreError("receipts_of", err)
	}
	defer rows.Close()

	out := make(map[store.Receipt]struct{})

	for rows.Next() {
		var receiptText string
		if err := rows.Scan(&receiptText); err != nil {
			return nil, depoerr.NewStoreError("receipts_of", err)
		}

		receipt, err := decodeReceipt(receiptText)
		if err != nil {
			return nil, depoerr.NewStoreError("receipts_of", err)
		}

		out[receipt] = struct{}{}
	}

	return out, rows.Err()
}

func (s *Store) RecordByReceipt(ctx context.Context, receipt store.Receipt) (*store.Record, error) {
	var (
		userIDText string
		data       []byte
	)

	err := s.pool.QueryRow(ctx, "SELECT user_id, data FROM records WHERE receipt = $1", encodeReceipt(receipt)).
		Scan(&userIDText, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, depoerr.NewStoreError("record_by_receipt", err)
	}

	userID, err := decodeUserID(userIDText)
	if err != nil {
		return nil, depoerr.NewStoreError("record_by_receipt", err)
	}

	return &store.Record{Receipt: receipt, UserID: userID, Data: data}, nil
}

func (s *Store) DeleteRecord(ctx context.Context, receipt store.Receipt) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM records WHERE receipt = $1", encodeReceipt(receipt))
	if err != nil {
		return depoerr.NewStoreError("delete_record", err)
	}

	return nil
}

func (s *Store) SetUserPublicKey(ctx context.Context, oldPK, newPK depocrypto.PublicKey) error {
	_, err := s.pool.Exec(ctx, "UPDATE users SET public_key = $1 WHERE public_key = $2",
		encodePublicKey(newPK), encodePublicKey(oldPK))
	if err != nil {
		return depoerr.NewStoreError("set_user_public_key", err)
	}

	return nil
}

func (s *Store) SetUserRecovery(ctx context.Context, id store.UserID, recovery *string) error {
	var value any
	if recovery != nil {
		value = *recovery
	}

	_, err := s.pool.Exec(ctx, "UPDATE users SET recovery = $1 WHERE user_id = $2", value, encodeUserID(id))
	if err != nil {
		return depoerr.NewStoreError("set_user_recovery", err)
	}

	return nil
}

func (s *Store) RemoveUser(ctx context.Context, id store.UserID) error {
	// ON DELETE CASCADE on records.user_id handles the record cascade in
	// this single statement.
	_, err := s.pool.Exec(ctx, "DELETE FROM users WHERE user_id = $1", encodeUserID(id))
	if err != nil {
		return depoerr.NewStoreError("remove_user", err)
	}

	return nil
}

func decodeUser(userIDText, pubKeyText string, recovery *string) (store.User, error) {
	id, err := decodeUserID(userIDText)
	if err != nil {
		return store.User{}, err
	}

	pub, err := decodePublicKey(pubKeyText)
	if err != nil {
		return store.User{}, err
	}

	return store.User{ID: id, PublicKey: pub, Recovery: recovery}, nil
}

func encodeUserID(id store.UserID) string     { return depocrypto.EncodeText(tagUserID, id[:]) }
func encodeReceipt(r store.Receipt) string    { return depocrypto.EncodeText(tagReceipt, r[:]) }
func encodePublicKey(pk depocrypto.PublicKey) string {
	return depocrypto.EncodeText(tagPublicKey, pk.Bytes())
}

func encodePrivateKey(priv depocrypto.PrivateKey) string {
	raw := make([]byte, 0, len(priv.Signing)+32)
	raw = append(raw, priv.Signing...)
	raw = append(raw, priv.Agreement[:]...)

	return depocrypto.EncodeText(tagPrivateKey, raw)
}

func decodeUserID(text string) (store.UserID, error) {
	raw, err := depocrypto.DecodeText(tagUserID, text)
	if err != nil {
		return store.UserID{}, err
	}

	var id store.UserID
	if len(raw) != len(id) {
		return id, fmt.Errorf("pgstore: bad user id length %d", len(raw))
	}

	copy(id[:], raw)

	return id, nil
}

func decodeReceipt(text string) (store.Receipt, error) {
	raw, err := depocrypto.DecodeText(tagReceipt, text)
	if err != nil {
		return store.Receipt{}, err
	}

	var r store.Receipt
	if len(raw) != len(r) {
		return r, fmt.Errorf("pgstore: bad receipt length %d", len(raw))
	}

	copy(r[:], raw)

	return r, nil
}

func decodePublicKey(text string) (depocrypto.PublicKey, error) {
	raw, err := depocrypto.DecodeText(tagPublicKey, text)
	if err != nil {
		return depocrypto.PublicKey{}, err
	}

	return depocrypto.PublicKeyFromBytes(raw)
}

func decodePrivateKey(text string) (depocrypto.PrivateKey, error) {
	raw, err := depocrypto.DecodeText(tagPrivateKey, text)
	if err != nil {
		return depocrypto.PrivateKey{}, err
	}

	if len(raw) < 32 {
		return depocrypto.PrivateKey{}, fmt.Errorf("pgstore: bad private key length %d", len(raw))
	}

	var priv depocrypto.PrivateKey
	priv.Signing = append([]byte(nil), raw[:len(raw)-32]...)
	copy(priv.Agreement[:], raw[len(raw)-32:])

	return priv, nil
}

var _ store.Store = (*Store)(nil)
