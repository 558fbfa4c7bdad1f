// Package integration drives the depository exclusively through its
// textual envelope surface (internal/pipeline.Pipeline.Handle), the same
// boundary a real client speaks over HTTP. No test here reaches past that
// boundary into account or store internals.
package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/go-depo/internal/account"
	"github.com/blockchaincommons/go-depo/internal/pipeline"
	"github.com/blockchaincommons/go-depo/internal/schema"
	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/internal/store/memstore"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/envelope"
)

type client struct {
	pub  depocrypto.PublicKey
	priv depocrypto.PrivateKey
}

func newClient(t *testing.T) client {
	t.Helper()

	pub, priv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	return client{pub: pub, priv: priv}
}

func (c client) keyText() string {
	return depocrypto.EncodeText("pubkey", c.pub.Bytes())
}

func (c client) call(t *testing.T, p *pipeline.Pipeline, depoPub depocrypto.PublicKey, function string, params any) envelope.ResponseBody {
	t.Helper()

	raw, err := envelope.EncodeParams(params)
	require.NoError(t, err)

	reqText, err := envelope.SealRequest(envelope.RequestBody{Function: function, ID: "id", Params: raw}, c.priv, depoPub)
	require.NoError(t, err)

	respText := p.Handle(context.Background(), reqText)

	resp, err := envelope.OpenResponse(respText, c.priv, depoPub)
	require.NoError(t, err)

	return resp
}

func newDepository(t *testing.T) (*pipeline.Pipeline, depocrypto.PublicKey) {
	t.Helper()

	depoPub, depoPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	settings := store.Settings{
		PrivateKey:                depoPriv,
		PublicKey:                 depoPub,
		ContinuationExpirySeconds: 600,
		MaxPayloadSize:            1 << 20,
	}

	svc := account.New(memstore.New(settings), envelope.ContinuationCodec{}, nil)

	return pipeline.New(svc, depoPriv, depoPub, nil), depoPub
}

// Scenario 1: Alice stores and retrieves a share by its own receipt.
func TestScenarioAliceStoresAndRetrieves(t *testing.T) {
	p, depoPub := newDepository(t)
	alice := newClient(t)

	storeResp := alice.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: alice.keyText(), Data: []byte{0xca, 0xfe, 0xba, 0xbe}})
	require.True(t, storeResp.OK)

	var stored schema.StoreShareResponse
	require.NoError(t, envelope.DecodeParams(storeResp.Payload, &stored))

	getResp := alice.call(t, p, depoPub, "getShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: alice.keyText(), Receipt: []string{stored.Receipt}})
	require.True(t, getResp.OK)

	var shares schema.GetSharesResponse
	require.NoError(t, envelope.DecodeParams(getResp.Payload, &shares))
	require.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe}, shares[stored.Receipt])
}

// Scenario 2: Bob's shares are never visible to Alice's queries.
func TestScenarioCrossUserIsolation(t *testing.T) {
	p, depoPub := newDepository(t)
	alice, bob := newClient(t), newClient(t)

	bobResp := bob.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: bob.keyText(), Data: []byte{0xde, 0xad, 0xbe, 0xef}})

	var bobStored schema.StoreShareResponse
	require.NoError(t, envelope.DecodeParams(bobResp.Payload, &bobStored))

	aliceResp := alice.call(t, p, depoPub, "getShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: alice.keyText(), Receipt: []string{bobStored.Receipt}})
	require.True(t, aliceResp.OK)

	var shares schema.GetSharesResponse
	require.NoError(t, envelope.DecodeParams(aliceResp.Payload, &shares))
	require.Empty(t, shares)
}

// Scenario 3: TOFU re-storage of the same (key, data) is idempotent and
// returns the same receipt every time.
func TestScenarioTOFUIdempotentReStorage(t *testing.T) {
	p, depoPub := newDepository(t)
	alice := newClient(t)

	data := []byte{1, 2, 3}

	first := alice.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: alice.keyText(), Data: data})

	second := alice.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: alice.keyText(), Data: data})

	var firstResult, secondResult schema.StoreShareResponse
	require.NoError(t, envelope.DecodeParams(first.Payload, &firstResult))
	require.NoError(t, envelope.DecodeParams(second.Payload, &secondResult))
	require.Equal(t, firstResult.Receipt, secondResult.Receipt)
}

// Scenario 4: delete_shares is idempotent, and the deleted share no longer
// resolves via get_shares("" => all).
func TestScenarioDeleteIdempotent(t *testing.T) {
	p, depoPub := newDepository(t)
	alice := newClient(t)

	storeResp := alice.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: alice.keyText(), Data: []byte{9, 9}})

	var stored schema.StoreShareResponse
	require.NoError(t, envelope.DecodeParams(storeResp.Payload, &stored))

	deleteParams := struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: alice.keyText(), Receipt: []string{stored.Receipt}}

	first := alice.call(t, p, depoPub, "deleteShares", deleteParams)
	require.True(t, first.OK)

	second := alice.call(t, p, depoPub, "deleteShares", deleteParams)
	require.True(t, second.OK)

	getAll := alice.call(t, p, depoPub, "getShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: alice.keyText()})
	require.True(t, getAll.OK)

	var shares schema.GetSharesResponse
	require.NoError(t, envelope.DecodeParams(getAll.Payload, &shares))
	require.NotContains(t, shares, stored.Receipt)
}

// Scenario 5: setting a recovery string already claimed by another account
// fails with a conflict.
func TestScenarioRecoveryCollision(t *testing.T) {
	p, depoPub := newDepository(t)
	alice, bob := newClient(t), newClient(t)

	_ = alice.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: alice.keyText(), Data: []byte{1}})
	_ = bob.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: bob.keyText(), Data: []byte{2}})

	aliceRecovery := alice.call(t, p, depoPub, "updateRecovery", struct {
		Key      string `cbor:"key"`
		Recovery string `cbor:"recovery"`
	}{Key: alice.keyText(), Recovery: "shared@example.com"})
	require.True(t, aliceRecovery.OK)

	bobRecovery := bob.call(t, p, depoPub, "updateRecovery", struct {
		Key      string `cbor:"key"`
		Recovery string `cbor:"recovery"`
	}{Key: bob.keyText(), Recovery: "shared@example.com"})
	require.False(t, bobRecovery.OK)
}

// Scenario 6: a full recovery transfer. The continuation can only be
// finished by the new key it names.
func TestScenarioRecoveryTransfer(t *testing.T) {
	p, depoPub := newDepository(t)
	bob := newClient(t)
	newOwner := newClient(t)
	attacker := newClient(t)

	_ = bob.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: bob.keyText(), Data: []byte{7}})

	_ = bob.call(t, p, depoPub, "updateRecovery", struct {
		Key      string `cbor:"key"`
		Recovery string `cbor:"recovery"`
	}{Key: bob.keyText(), Recovery: "bob@example.com"})

	startResp := newOwner.call(t, p, depoPub, "startRecovery", struct {
		Key      string `cbor:"key"`
		Recovery string `cbor:"recovery"`
	}{Key: newOwner.keyText(), Recovery: "bob@example.com"})
	require.True(t, startResp.OK)

	var started schema.StartRecoveryResponse
	require.NoError(t, envelope.DecodeParams(startResp.Payload, &started))

	wrongSigner := attacker.call(t, p, depoPub, "finishRecovery", struct {
		Key          string `cbor:"key"`
		Continuation string `cbor:"continuation"`
	}{Key: attacker.keyText(), Continuation: started.Continuation})
	require.False(t, wrongSigner.OK)
	require.Equal(t, "invalid user signing key", wrongSigner.Error)

	finishResp := newOwner.call(t, p, depoPub, "finishRecovery", struct {
		Key          string `cbor:"key"`
		Continuation string `cbor:"continuation"`
	}{Key: newOwner.keyText(), Continuation: started.Continuation})
	require.True(t, finishResp.OK)

	getResp := newOwner.call(t, p, depoPub, "getShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: newOwner.keyText()})
	require.True(t, getResp.OK)

	var shares schema.GetSharesResponse
	require.NoError(t, envelope.DecodeParams(getResp.Payload, &shares))
	require.Len(t, shares, 1)
}

// get_shares on a user with zero shares returns an empty map, not an error.
func TestScenarioGetSharesOnEmptyAccount(t *testing.T) {
	p, depoPub := newDepository(t)
	fresh := newClient(t)

	_ = fresh.call(t, p, depoPub, "storeShare", struct {
		Key  string `cbor:"key"`
		Data []byte `cbor:"data"`
	}{Key: fresh.keyText(), Data: []byte{0}})

	_ = fresh.call(t, p, depoPub, "deleteShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: fresh.keyText()})

	resp := fresh.call(t, p, depoPub, "getShares", struct {
		Key     string   `cbor:"key"`
		Receipt []string `cbor:"receipt"`
	}{Key: fresh.keyText()})
	require.True(t, resp.OK)

	var shares schema.GetSharesResponse
	require.NoError(t, envelope.DecodeParams(resp.Payload, &shares))
	require.Empty(t, shares)
}
