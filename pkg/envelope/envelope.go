// Package envelope implements the wire-level container the depository
// speaks: a CBOR-encoded, signed-and-encrypted request/response envelope
// built on pkg/depocrypto. It owns the one place in the repository that
// knows the textual wire format; account logic and the pipeline only ever
// see decoded Go values.
package envelope

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
)

const (
	tagEnvelope = "envelope"
	tagError    = "error"
)

// signedBody is the plaintext carried inside every sealed envelope: a CBOR
// payload plus the Ed25519 signature over it.
type signedBody struct {
	Body      []byte `cbor:"body"`
	Signature []byte `cbor:"signature"`
}

// RequestBody is the plaintext request envelope extracted after decryption.
// OpenRequest does not verify its signature; the pipeline does that
// afterwards with the key named in the body.
type RequestBody struct {
	Function string          `cbor:"function"`
	ID       string          `cbor:"id"`
	Params   cbor.RawMessage `cbor:"params"`
}

// ResponseBody is the plaintext response envelope before it is signed and
// encrypted back to the caller.
type ResponseBody struct {
	ID      string          `cbor:"id"`
	OK      bool            `cbor:"ok"`
	Payload cbor.RawMessage `cbor:"payload,omitempty"`
	Error   string          `cbor:"error,omitempty"`
}

// EncodeParams CBOR-encodes v for use as a RequestBody.Params or
// ResponseBody.Payload value.
func EncodeParams(v any) (cbor.RawMessage, error) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("envelope: encode params: %w", err)
	}

	return b, nil
}

// DecodeParams decodes raw into v.
func DecodeParams(raw cbor.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("envelope: empty params")
	}

	if err := cbor.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("envelope: decode params: %w", err)
	}

	return nil
}

// SealRequest builds a full wire-format request envelope: sign the CBOR
// encoding of body with signer, seal it to recipient, and render the
// textual form. Used by clients and by tests that drive the pipeline
// end-to-end.
func SealRequest(body RequestBody, signer depocrypto.PrivateKey, recipient depocrypto.PublicKey) (string, error) {
	return sealBody(body, signer, recipient)
}

// OpenRequest decrypts and unwraps an inbound request envelope with the
// depository's own private key, returning the plaintext body and the raw
// bytes that were signed (needed by the caller to verify the signature
// against the key named inside the body).
func OpenRequest(text string, depoPriv depocrypto.PrivateKey) (RequestBody, []byte, []byte, error) {
	var body RequestBody

	signedData, sig, err := openSealed(text, depoPriv)
	if err != nil {
		return body, nil, nil, err
	}

	if err := cbor.Unmarshal(signedData, &body); err != nil {
		return body, nil, nil, fmt.Errorf("envelope: decode request body: %w", err)
	}

	return body, signedData, sig, nil
}

// SealResponse signs the CBOR encoding of body with the depository's
// private key and encrypts it to recipient.
func SealResponse(body ResponseBody, depoPriv depocrypto.PrivateKey, recipient depocrypto.PublicKey) (string, error) {
	return sealBody(body, depoPriv, recipient)
}

// OpenResponse is the client-side counterpart of SealResponse, used by
// integration tests that exercise the pipeline as a black box.
func OpenResponse(text string, clientPriv depocrypto.PrivateKey, depoPub depocrypto.PublicKey) (ResponseBody, error) {
	var body ResponseBody

	signedData, sig, err := openSealed(text, clientPriv)
	if err != nil {
		return body, err
	}

	if !depocrypto.Verify(depoPub, signedData, sig) {
		return body, fmt.Errorf("envelope: response signature does not match depository key")
	}

	if err := cbor.Unmarshal(signedData, &body); err != nil {
		return body, fmt.Errorf("envelope: decode response body: %w", err)
	}

	return body, nil
}

func sealBody(body any, signer depocrypto.PrivateKey, recipient depocrypto.PublicKey) (string, error) {
	plain, err := cbor.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("envelope: encode body: %w", err)
	}

	wrapped := signedBody{Body: plain, Signature: depocrypto.Sign(signer, plain)}

	wrappedBytes, err := cbor.Marshal(wrapped)
	if err != nil {
		return "", fmt.Errorf("envelope: encode signed wrapper: %w", err)
	}

	sealed, err := depocrypto.Seal(wrappedBytes, recipient)
	if err != nil {
		return "", fmt.Errorf("envelope: seal: %w", err)
	}

	return depocrypto.EncodeText(tagEnvelope, sealed), nil
}

// openSealed decrypts text with priv and returns the signed plaintext body
// plus its detached signature, without verifying the signature (callers
// verify against whichever key is appropriate for the direction of travel).
func openSealed(text string, priv depocrypto.PrivateKey) (body []byte, signature []byte, err error) {
	raw, err := depocrypto.DecodeText(tagEnvelope, text)
	if err != nil {
		return nil, nil, fmt.Errorf("envelope: not a valid envelope: %w", err)
	}

	plaintext, err := depocrypto.Open(raw, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("envelope: request not encrypted to depository public key: %w", err)
	}

	var wrapped signedBody
	if err := cbor.Unmarshal(plaintext, &wrapped); err != nil {
		return nil, nil, fmt.Errorf("envelope: malformed signed wrapper: %w", err)
	}

	return wrapped.Body, wrapped.Signature, nil
}

// VerifySignature checks that sig is a valid signature over signedData by
// pub. Exposed for the pipeline, which extracts pub from the request body
// itself before verifying.
func VerifySignature(pub depocrypto.PublicKey, signedData, sig []byte) bool {
	return depocrypto.Verify(pub, signedData, sig)
}

// RawErrorEnvelope renders the one response that is never signed or
// encrypted: a fixed, minimal textual form used when the inbound envelope
// cannot be opened, or when no response can be sealed back to the caller
// (its key parameter is missing or malformed, or sealing fails).
func RawErrorEnvelope(message string) string {
	raw, err := cbor.Marshal(struct {
		Error string `cbor:"error"`
	}{Error: message})
	if err != nil {
		// cbor.Marshal of a plain string field cannot fail.
		panic(err)
	}

	return depocrypto.EncodeText(tagError, raw)
}
