// Package depocrypto provides the cryptographic primitives the envelope
// pipeline is built on: keypair generation, signing, public-key encryption,
// content digests and a textual encoding for keys and receipts. It is a
// thin binding over real ecosystem packages (crypto/ed25519,
// golang.org/x/crypto/nacl/box, golang.org/x/crypto/blake2b,
// github.com/mr-tron/base58) rather than a from-scratch crypto
// implementation.
package depocrypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// DigestSize is the length, in bytes, of every content digest produced by
// Digest (user ids, receipts).
const DigestSize = 32

// PublicKey bundles the two key components a caller needs: an Ed25519
// verification key and an X25519 agreement key used to encrypt to this
// caller. Depository and user keys share this shape.
type PublicKey struct {
	Signing   [ed25519.PublicKeySize]byte
	Agreement [32]byte
}

// PrivateKey bundles the matching private components.
type PrivateKey struct {
	Signing   ed25519.PrivateKey
	Agreement [32]byte
}

// Bytes returns the canonical fixed-width encoding of pk: Signing ‖
// Agreement. This is the form EncodeText renders on the wire and in pgstore's
// public_key column.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, 0, ed25519.PublicKeySize+32)
	out = append(out, pk.Signing[:]...)
	out = append(out, pk.Agreement[:]...)

	return out
}

// Equal reports whether pk and other encode the same key material.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.Signing == other.Signing && pk.Agreement == other.Agreement
}

// PublicKeyFromBytes parses the canonical encoding produced by Bytes.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey

	if len(b) != ed25519.PublicKeySize+32 {
		return pk, fmt.Errorf("depocrypto: bad public key length %d", len(b))
	}

	copy(pk.Signing[:], b[:ed25519.PublicKeySize])
	copy(pk.Agreement[:], b[ed25519.PublicKeySize:])

	return pk, nil
}

// GenerateKeypair creates a fresh signing+agreement keypair, as used both to
// provision the depository's own identity and in tests that need a caller
// keypair.
func GenerateKeypair() (PublicKey, PrivateKey, error) {
	signPub, signPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return PublicKey{}, PrivateKey{}, fmt.Errorf("depocrypto: generate signing key: %w", err)
	}

	agreePub, agreePriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return PublicKey{}, PrivateKey{}, fmt.Errorf("depocrypto: generate agreement key: %w", err)
	}

	var pub PublicKey
	copy(pub.Signing[:], signPub)
	pub.Agreement = *agreePub

	priv := PrivateKey{
		Signing:   signPriv,
		Agreement: *agreePriv,
	}

	return pub, priv, nil
}

// Public derives the PublicKey half of priv.
func (priv PrivateKey) Public() PublicKey {
	var pub PublicKey
	copy(pub.Signing[:], priv.Signing.Public().(ed25519.PublicKey))

	agreePub, err := curve25519.X25519(priv.Agreement[:], curve25519.Basepoint)
	if err == nil {
		copy(pub.Agreement[:], agreePub)
	}

	return pub
}

// Sign produces an Ed25519 signature over data.
func Sign(priv PrivateKey, data []byte) []byte {
	return ed25519.Sign(priv.Signing, data)
}

// Verify reports whether sig is a valid Ed25519 signature over data by pub.
func Verify(pub PublicKey, data, sig []byte) bool {
	return ed25519.Verify(pub.Signing[:], data, sig)
}

// Digest computes a single content digest over the concatenation of parts,
// used both for receipts (digest(user_id ‖ data)) and account-random ids.
func Digest(parts ...[]byte) [DigestSize]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an invalid key, and we pass none.
		panic(err)
	}

	for _, p := range parts {
		h.Write(p) //nolint:errcheck
	}

	var out [DigestSize]byte
	copy(out[:], h.Sum(nil))

	return out
}

// NewAccountID generates a fresh ~256 bit random, opaque user identifier.
func NewAccountID() ([DigestSize]byte, error) {
	var raw [DigestSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return raw, fmt.Errorf("depocrypto: generate account id: %w", err)
	}

	// Passed through Digest so the id is indistinguishable from a
	// content-addressed value and callers never need to special-case it.
	return Digest(raw[:]), nil
}

// Seal encrypts plaintext to recipient using an ephemeral sender keypair
// (the "sealed box" construction: an ephemeral X25519 key is generated per
// call, its public half is prefixed to the ciphertext, and the recipient
// recovers the shared secret from their own private key plus that ephemeral
// public key — the sender needs no long-term key of their own).
func Seal(plaintext []byte, recipient PublicKey) ([]byte, error) {
	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("depocrypto: generate ephemeral key: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("depocrypto: generate nonce: %w", err)
	}

	sealed := box.Seal(nil, plaintext, &nonce, &recipient.Agreement, ephPriv)

	out := make([]byte, 0, 32+24+len(sealed))
	out = append(out, ephPub[:]...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)

	return out, nil
}

// Open decrypts a sealed box produced by Seal, addressed to priv.
func Open(sealed []byte, priv PrivateKey) ([]byte, error) {
	if len(sealed) < 32+24 {
		return nil, errors.New("depocrypto: sealed box too short")
	}

	var ephPub [32]byte
	copy(ephPub[:], sealed[:32])

	var nonce [24]byte
	copy(nonce[:], sealed[32:56])

	plaintext, ok := box.Open(nil, sealed[56:], &nonce, &ephPub, &priv.Agreement)
	if !ok {
		return nil, errors.New("depocrypto: decryption failed")
	}

	return plaintext, nil
}

// EncodeText renders data in the textual form used on the wire for public
// keys and receipts: a tag identifying the value's kind followed by its
// base58 encoding, analogous to the "ur:" textual encoding the original
// envelope format uses.
func EncodeText(tag string, data []byte) string {
	return fmt.Sprintf("ur:%s/%s", tag, base58.Encode(data))
}

// DecodeText parses the textual form produced by EncodeText, verifying tag
// matches.
func DecodeText(tag, text string) ([]byte, error) {
	prefix := "ur:" + tag + "/"
	if len(text) <= len(prefix) || text[:len(prefix)] != prefix {
		return nil, fmt.Errorf("depocrypto: %q is not a %s", text, prefix)
	}

	return base58.Decode(text[len(prefix):])
}
