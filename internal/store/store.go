// Package store defines the storage abstraction account logic is built on,
// and the derived helpers shared, unmodified, by every implementation.
package store

import (
	"context"

	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/depoerr"
)

// UserID is the opaque, account-random identifier of a user. Never exposed
// to clients.
type UserID [depocrypto.DigestSize]byte

// Receipt is the content digest digest(user_id ‖ data) that identifies a
// stored record.
type Receipt [depocrypto.DigestSize]byte

// User is one account: a rotatable public key and an optional, globally
// unique recovery contact string.
type User struct {
	ID        UserID
	PublicKey depocrypto.PublicKey
	Recovery  *string
}

// Record is one stored share.
type Record struct {
	Receipt Receipt
	UserID  UserID
	Data    []byte
}

// Settings is the single persistent settings row.
type Settings struct {
	PrivateKey                depocrypto.PrivateKey
	PublicKey                 depocrypto.PublicKey
	ContinuationExpirySeconds int64
	MaxPayloadSize            int
}

// Store is the minimal CRUD interface account logic is written against.
// Every method may fail with a depoerr.StoreError for transport/IO
// failures; semantic errors are documented per-method.
type Store interface {
	// Settings returns the computed-once settings view.
	Settings(ctx context.Context) (Settings, error)

	LookupUserByPublicKey(ctx context.Context, pk depocrypto.PublicKey) (*User, error)
	LookupUserByID(ctx context.Context, id UserID) (*User, error)
	LookupUserByRecovery(ctx context.Context, recovery string) (*User, error)

	// InsertUser requires the caller to guarantee uniqueness of ID and
	// PublicKey.
	InsertUser(ctx context.Context, u User) error

	// InsertRecord is idempotent on Receipt: re-inserting an identical
	// (Receipt, UserID, Data) tuple is a no-op, never an error.
	InsertRecord(ctx context.Context, r Record) error

	ReceiptsOf(ctx context.Context, id UserID) (map[Receipt]struct{}, error)
	RecordByReceipt(ctx context.Context, receipt Receipt) (*Record, error)

	// DeleteRecord is idempotent: a missing receipt is not an error.
	DeleteRecord(ctx context.Context, receipt Receipt) error

	// SetUserPublicKey atomically swaps the public-key index for the single
	// user currently keyed under oldPK.
	SetUserPublicKey(ctx context.Context, oldPK, newPK depocrypto.PublicKey) error

	// SetUserRecovery updates both the user record and the recovery index.
	// Setting the same value the user already has is a no-op; setting nil
	// removes the index entry.
	SetUserRecovery(ctx context.Context, id UserID, recovery *string) error

	// RemoveUser removes the user and cascades to all of its records. Idempotent.
	RemoveUser(ctx context.Context, id UserID) error
}

// RecordsForUserAndReceipts returns only the records in receipts that are
// both indexed under id and exist, silently skipping the others. Defined
// once here and reused, unmodified, by every account-logic caller
// regardless of store backend.
func RecordsForUserAndReceipts(ctx context.Context, s Store, id UserID, receipts map[Receipt]struct{}) ([]Record, error) {
	owned, err := s.ReceiptsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(receipts))

	for r := range receipts {
		if _, ok := owned[r]; !ok {
			continue
		}

		rec, err := s.RecordByReceipt(ctx, r)
		if err != nil {
			return nil, err
		}

		if rec == nil {
			continue
		}

		out = append(out, *rec)
	}

	return out, nil
}

// EnsureUserForKey implements Trust-On-First-Use: returns the existing user
// for pk, or allocates and inserts a fresh one with no recovery.
//
// Two concurrent callers racing on the same never-seen key may both attempt
// InsertUser. When the loser's InsertUser fails (pgstore's unique
// public_key index), the lookup is repeated and the winner's account is
// returned; the insert error is returned only if that lookup finds no user.
// This is an accepted race, not a bug.
func EnsureUserForKey(ctx context.Context, s Store, pk depocrypto.PublicKey) (User, error) {
	existing, err := s.LookupUserByPublicKey(ctx, pk)
	if err != nil {
		return User{}, err
	}

	if existing != nil {
		return *existing, nil
	}

	id, err := depocrypto.NewAccountID()
	if err != nil {
		return User{}, depoerr.NewStoreError("ensure_user_for_key", err)
	}

	u := User{ID: UserID(id), PublicKey: pk}

	if err := s.InsertUser(ctx, u); err != nil {
		if winner, lookupErr := s.LookupUserByPublicKey(ctx, pk); lookupErr == nil && winner != nil {
			return *winner, nil
		}

		return User{}, err
	}

	return u, nil
}

// RequireUserForKey is EnsureUserForKey's read-only counterpart: it fails
// with "unknown public key" instead of creating an account.
func RequireUserForKey(ctx context.Context, s Store, pk depocrypto.PublicKey) (User, error) {
	existing, err := s.LookupUserByPublicKey(ctx, pk)
	if err != nil {
		return User{}, err
	}

	if existing == nil {
		return User{}, depoerr.NewNotFoundError("user", "unknown public key")
	}

	return *existing, nil
}
