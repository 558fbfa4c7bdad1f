// Package schema defines the typed request/response bodies for the nine
// envelope operations. Field tags are the wire-level parameter labels and
// must be preserved bit-exact; the pipeline package is the only caller
// that encodes/decodes these types.
package schema

// StoreShareRequest carries the bytes to store under the caller's account.
type StoreShareRequest struct {
	Key  string `cbor:"key" validate:"required"`
	Data []byte `cbor:"data" validate:"required"`
}

// StoreShareResponse is the textual receipt for the stored share.
type StoreShareResponse struct {
	Receipt string `cbor:"receipt"`
}

// GetSharesRequest asks for zero or more receipts; an empty Receipt list
// means "all of my shares".
type GetSharesRequest struct {
	Key     string   `cbor:"key" validate:"required"`
	Receipt []string `cbor:"receipt" validate:"dive,required"`
}

// GetSharesResponse maps each resolvable receipt to its stored bytes.
// Receipts the caller doesn't own, or that don't exist, are simply absent.
type GetSharesResponse map[string][]byte

// DeleteSharesRequest asks for zero or more receipts to delete; an empty
// Receipt list means "delete everything".
type DeleteSharesRequest struct {
	Key     string   `cbor:"key" validate:"required"`
	Receipt []string `cbor:"receipt" validate:"dive,required"`
}

// DeleteAccountRequest has no payload beyond the caller's key.
type DeleteAccountRequest struct {
	Key string `cbor:"key" validate:"required"`
}

// UpdateKeyRequest rotates the caller's public key. The caller must have
// signed the enclosing envelope with Key (the old key); see pipeline.
type UpdateKeyRequest struct {
	Key    string `cbor:"key" validate:"required"`
	NewKey string `cbor:"newKey" validate:"required"`
}

// UpdateRecoveryRequest sets or clears the caller's recovery string. A nil
// Recovery clears it.
type UpdateRecoveryRequest struct {
	Key      string  `cbor:"key" validate:"required"`
	Recovery *string `cbor:"recovery,omitempty"`
}

// GetRecoveryRequest has no payload beyond the caller's key.
type GetRecoveryRequest struct {
	Key string `cbor:"key" validate:"required"`
}

// GetRecoveryResponse carries the caller's recovery string, or nil if none
// is set.
type GetRecoveryResponse struct {
	Recovery *string `cbor:"recovery,omitempty"`
}

// StartRecoveryRequest: Key is the NEW public key the caller wants to adopt;
// Recovery identifies the account to recover.
type StartRecoveryRequest struct {
	Key      string `cbor:"key" validate:"required"`
	Recovery string `cbor:"recovery" validate:"required"`
}

// StartRecoveryResponse carries the signed-and-encrypted continuation
// envelope the client must present to finishRecovery.
type StartRecoveryResponse struct {
	Continuation string `cbor:"continuation"`
}

// FinishRecoveryRequest: Key is again the new public key (the envelope
// signature over this request must be made with it); Continuation is the
// envelope returned by startRecovery.
type FinishRecoveryRequest struct {
	Key          string `cbor:"key" validate:"required"`
	Continuation string `cbor:"continuation" validate:"required"`
}

// DedupStrings returns ss with duplicates removed, preserving first
// occurrence order. A requested receipt list is treated as a set; callers
// decoding GetSharesRequest / DeleteSharesRequest apply this before handing
// the list to account logic, which therefore never needs to reason about
// duplicates.
func DedupStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))

	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
