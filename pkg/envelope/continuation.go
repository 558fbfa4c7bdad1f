package envelope

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/blockchaincommons/go-depo/internal/account"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
)

const tagContinuation = "continuation"

// continuationPayload is the msgpack wire form of account.Continuation.
// Keeping it separate from the account package's Continuation type lets the
// wire field names and the Go field names evolve independently.
type continuationPayload struct {
	OldKey []byte `msgpack:"old_key"`
	NewKey []byte `msgpack:"new_key"`
	Expiry int64  `msgpack:"expiry"`
}

// ContinuationCodec implements account.Codec by msgpack-encoding the
// continuation, signing it, and sealing it to the depository's own public
// key: the token is opaque and stateless, and only the depository that
// issued it can ever decode one.
type ContinuationCodec struct{}

var _ account.Codec = ContinuationCodec{}

// Encode renders c as a signed, self-encrypted continuation token.
func (ContinuationCodec) Encode(_ context.Context, c account.Continuation, priv depocrypto.PrivateKey, pub depocrypto.PublicKey) (string, error) {
	payload := continuationPayload{
		OldKey: c.OldKey.Bytes(),
		NewKey: c.NewKey.Bytes(),
		Expiry: c.Expiry.Unix(),
	}

	plain, err := msgpack.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("envelope: encode continuation: %w", err)
	}

	wrapped := signedBody{Body: plain, Signature: depocrypto.Sign(priv, plain)}

	wrappedBytes, err := msgpack.Marshal(wrapped)
	if err != nil {
		return "", fmt.Errorf("envelope: encode continuation wrapper: %w", err)
	}

	sealed, err := depocrypto.Seal(wrappedBytes, pub)
	if err != nil {
		return "", fmt.Errorf("envelope: seal continuation: %w", err)
	}

	return depocrypto.EncodeText(tagContinuation, sealed), nil
}

// Decode recovers a Continuation from text, verifying the depository's own
// signature over it (guarding against a continuation forged by anyone other
// than the depository itself, since only it holds priv).
func (ContinuationCodec) Decode(_ context.Context, text string, priv depocrypto.PrivateKey) (account.Continuation, error) {
	var c account.Continuation

	raw, err := depocrypto.DecodeText(tagContinuation, text)
	if err != nil {
		return c, fmt.Errorf("envelope: not a valid continuation: %w", err)
	}

	wrappedBytes, err := depocrypto.Open(raw, priv)
	if err != nil {
		return c, fmt.Errorf("envelope: continuation not encrypted to depository key: %w", err)
	}

	var wrapped signedBody
	if err := msgpack.Unmarshal(wrappedBytes, &wrapped); err != nil {
		return c, fmt.Errorf("envelope: malformed continuation wrapper: %w", err)
	}

	pub := priv.Public()
	if !depocrypto.Verify(pub, wrapped.Body, wrapped.Signature) {
		return c, fmt.Errorf("envelope: continuation signature mismatch")
	}

	var payload continuationPayload
	if err := msgpack.Unmarshal(wrapped.Body, &payload); err != nil {
		return c, fmt.Errorf("envelope: decode continuation payload: %w", err)
	}

	oldKey, err := depocrypto.PublicKeyFromBytes(payload.OldKey)
	if err != nil {
		return c, fmt.Errorf("envelope: decode continuation old key: %w", err)
	}

	newKey, err := depocrypto.PublicKeyFromBytes(payload.NewKey)
	if err != nil {
		return c, fmt.Errorf("envelope: decode continuation new key: %w", err)
	}

	c.OldKey = oldKey
	c.NewKey = newKey
	c.Expiry = time.Unix(payload.Expiry, 0).UTC()

	return c, nil
}
