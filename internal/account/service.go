// Package account implements the public business rules of the depository:
// TOFU account creation, share storage and retrieval, key rotation,
// recovery management and the two-phase recovery-transfer flow. Every
// method here receives a public key k that the envelope pipeline has
// already verified matches the request's signature; this package never
// touches a signature itself.
package account

import (
	"context"
	"time"

	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/depoerr"
	"github.com/blockchaincommons/go-depo/pkg/depotrace"
	"github.com/blockchaincommons/go-depo/pkg/mlog"
)

// now is stubbed out for testing expiry boundaries deterministically.
var now = time.Now

// Continuation is the decoded form of the recovery-transfer token: never
// persisted, self-describing, and authenticated by the Codec below rather
// than by this package.
type Continuation struct {
	OldKey depocrypto.PublicKey
	NewKey depocrypto.PublicKey
	Expiry time.Time
}

// Codec produces and consumes the signed-and-encrypted continuation
// envelope. Account logic is deliberately ignorant of the wire format; the
// concrete implementation lives in pkg/envelope.
type Codec interface {
	Encode(ctx context.Context, c Continuation, priv depocrypto.PrivateKey, pub depocrypto.PublicKey) (string, error)
	Decode(ctx context.Context, text string, priv depocrypto.PrivateKey) (Continuation, error)
}

// Service implements the nine account operations over a Store and a
// continuation Codec.
type Service struct {
	Store  store.Store
	Codec  Codec
	Logger mlog.Logger
}

// New builds a Service. logger may be nil, in which case log output is
// discarded.
func New(s store.Store, codec Codec, logger mlog.Logger) *Service {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Service{Store: s, Codec: codec, Logger: logger}
}

// StoreShare creates the caller's account on first contact (TOFU) and
// inserts a content-addressed record, idempotent on (key, data).
func (svc *Service) StoreShare(ctx context.Context, k depocrypto.PublicKey, data []byte) (receipt store.Receipt, err error) {
	ctx, span := depotrace.Start(ctx, "account.store_share")
	defer func() { depotrace.HandleSpanError(span, "store_share failed", err); span.End() }()

	settings, err := svc.Store.Settings(ctx)
	if err != nil {
		return store.Receipt{}, err
	}

	if len(data) > settings.MaxPayloadSize {
		return store.Receipt{}, depoerr.NewPreconditionError("data too large")
	}

	u, err := store.EnsureUserForKey(ctx, svc.Store, k)
	if err != nil {
		return store.Receipt{}, err
	}

	receipt = store.Receipt(depocrypto.Digest(u.ID[:], data))

	if err := svc.Store.InsertRecord(ctx, store.Record{Receipt: receipt, UserID: u.ID, Data: data}); err != nil {
		return store.Receipt{}, err
	}

	return receipt, nil
}

// GetShares resolves a caller's receipts to their stored bytes. An empty
// receipts set is substituted with the user's full receipt set. Foreign or
// missing receipts are silently omitted, never an error.
func (svc *Service) GetShares(ctx context.Context, k depocrypto.PublicKey, receipts map[store.Receipt]struct{}) (out map[store.Receipt][]byte, err error) {
	ctx, span := depotrace.Start(ctx, "account.get_shares")
	defer func() { depotrace.HandleSpanError(span, "get_shares failed", err); span.End() }()

	u, err := store.RequireUserForKey(ctx, svc.Store, k)
	if err != nil {
		return nil, err
	}

	if len(receipts) == 0 {
		receipts, err = svc.Store.ReceiptsOf(ctx, u.ID)
		if err != nil {
			return nil, err
		}
	}

	records, err := store.RecordsForUserAndReceipts(ctx, svc.Store, u.ID, receipts)
	if err != nil {
		return nil, err
	}

	out = make(map[store.Receipt][]byte, len(records))
	for _, r := range records {
		out[r.Receipt] = r.Data
	}

	return out, nil
}

// DeleteShares removes a caller's receipts, idempotent: never fails on a
// missing or foreign receipt.
func (svc *Service) DeleteShares(ctx context.Context, k depocrypto.PublicKey, receipts map[store.Receipt]struct{}) (err error) {
	ctx, span := depotrace.Start(ctx, "account.delete_shares")
	defer func() { depotrace.HandleSpanError(span, "delete_shares failed", err); span.End() }()

	u, err := store.RequireUserForKey(ctx, svc.Store, k)
	if err != nil {
		return err
	}

	if len(receipts) == 0 {
		receipts, err = svc.Store.ReceiptsOf(ctx, u.ID)
		if err != nil {
			return err
		}
	}

	for r := range receipts {
		if err := svc.Store.DeleteRecord(ctx, r); err != nil {
			return err
		}
	}

	return nil
}

// UpdateKey rotates a caller's public key, refusing the rotation if newKey
// is already claimed by another user.
func (svc *Service) UpdateKey(ctx context.Context, oldKey, newKey depocrypto.PublicKey) (err error) {
	ctx, span := depotrace.Start(ctx, "account.update_key")
	defer func() { depotrace.HandleSpanError(span, "update_key failed", err); span.End() }()

	existing, err := svc.Store.LookupUserByPublicKey(ctx, newKey)
	if err != nil {
		return err
	}

	if existing != nil {
		return depoerr.NewConflictError("user", "public key already in use")
	}

	return svc.Store.SetUserPublicKey(ctx, oldKey, newKey)
}

// DeleteAccount removes a caller's account and all its records, idempotent:
// succeeds silently for an unknown key.
func (svc *Service) DeleteAccount(ctx context.Context, k depocrypto.PublicKey) (err error) {
	ctx, span := depotrace.Start(ctx, "account.delete_account")
	defer func() { depotrace.HandleSpanError(span, "delete_account failed", err); span.End() }()

	u, err := svc.Store.LookupUserByPublicKey(ctx, k)
	if err != nil {
		return err
	}

	if u == nil {
		return nil
	}

	if err := svc.DeleteShares(ctx, k, nil); err != nil {
		return err
	}

	return svc.Store.RemoveUser(ctx, u.ID)
}

// UpdateRecovery sets or clears a caller's recovery string. An explicit
// empty string is normalized to "no recovery".
func (svc *Service) UpdateRecovery(ctx context.Context, k depocrypto.PublicKey, recovery *string) (err error) {
	ctx, span := depotrace.Start(ctx, "account.update_recovery")
	defer func() { depotrace.HandleSpanError(span, "update_recovery failed", err); span.End() }()

	u, err := store.RequireUserForKey(ctx, svc.Store, k)
	if err != nil {
		return err
	}

	if recovery != nil && *recovery == "" {
		recovery = nil
	}

	if recovery != nil {
		owner, err := svc.Store.LookupUserByRecovery(ctx, *recovery)
		if err != nil {
			return err
		}

		if owner != nil && owner.ID != u.ID {
			return depoerr.NewConflictError("recovery", "recovery method already exists")
		}
	}

	return svc.Store.SetUserRecovery(ctx, u.ID, recovery)
}

// GetRecovery returns a caller's current recovery string, or nil if unset.
func (svc *Service) GetRecovery(ctx context.Context, k depocrypto.PublicKey) (recovery *string, err error) {
	ctx, span := depotrace.Start(ctx, "account.get_recovery")
	defer func() { depotrace.HandleSpanError(span, "get_recovery failed", err); span.End() }()

	u, err := store.RequireUserForKey(ctx, svc.Store, k)
	if err != nil {
		return nil, err
	}

	return u.Recovery, nil
}

// StartRecovery looks up the account by recovery string, refuses if newKey
// is already claimed, and returns a continuation envelope signed by the
// depository and encrypted to itself.
func (svc *Service) StartRecovery(ctx context.Context, recovery string, newKey depocrypto.PublicKey) (continuation string, err error) {
	ctx, span := depotrace.Start(ctx, "account.start_recovery")
	defer func() { depotrace.HandleSpanError(span, "start_recovery failed", err); span.End() }()

	u, err := svc.Store.LookupUserByRecovery(ctx, recovery)
	if err != nil {
		return "", err
	}

	if u == nil {
		return "", depoerr.NewNotFoundError("recovery", "unknown recovery")
	}

	existing, err := svc.Store.LookupUserByPublicKey(ctx, newKey)
	if err != nil {
		return "", err
	}

	if existing != nil {
		return "", depoerr.NewConflictError("user", "public key already in use")
	}

	settings, err := svc.Store.Settings(ctx)
	if err != nil {
		return "", err
	}

	expiry := now().Add(time.Duration(settings.ContinuationExpirySeconds) * time.Second)

	c := Continuation{OldKey: u.PublicKey, NewKey: newKey, Expiry: expiry}

	return svc.Codec.Encode(ctx, c, settings.PrivateKey, settings.PublicKey)
}

// FinishRecovery decrypts and verifies the continuation, checks the expiry
// with strict inequality (expiry == now is treated as expired), and
// requires the caller to have signed with the continuation's NewKey before
// rotating the public key.
func (svc *Service) FinishRecovery(ctx context.Context, continuationText string, callerSigningKey depocrypto.PublicKey) (err error) {
	ctx, span := depotrace.Start(ctx, "account.finish_recovery")
	defer func() { depotrace.HandleSpanError(span, "finish_recovery failed", err); span.End() }()

	settings, err := svc.Store.Settings(ctx)
	if err != nil {
		return err
	}

	c, err := svc.Codec.Decode(ctx, continuationText, settings.PrivateKey)
	if err != nil {
		return depoerr.NewPreconditionError("invalid continuation")
	}

	if !now().Before(c.Expiry) {
		return depoerr.NewPreconditionError("continuation expired")
	}

	if !callerSigningKey.Equal(c.NewKey) {
		return depoerr.NewPreconditionError("invalid user signing key")
	}

	return svc.Store.SetUserPublicKey(ctx, c.OldKey, c.NewKey)
}
