package envelope_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/go-depo/internal/account"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/envelope"
)

func TestSealOpenRequestRoundTrip(t *testing.T) {
	depoPub, depoPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	clientPub, clientPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	params, err := envelope.EncodeParams(struct {
		Key string `cbor:"key"`
	}{Key: "abc"})
	require.NoError(t, err)

	body := envelope.RequestBody{Function: "getRecovery", ID: "req-1", Params: params}

	text, err := envelope.SealRequest(body, clientPriv, depoPub)
	require.NoError(t, err)

	got, signedData, sig, err := envelope.OpenRequest(text, depoPriv)
	require.NoError(t, err)
	require.Equal(t, body.Function, got.Function)
	require.Equal(t, body.ID, got.ID)
	require.True(t, envelope.VerifySignature(clientPub, signedData, sig))
}

func TestOpenRequestFailsForWrongRecipient(t *testing.T) {
	depoPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	_, otherPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	_, clientPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	text, err := envelope.SealRequest(envelope.RequestBody{Function: "x", ID: "1"}, clientPriv, depoPub)
	require.NoError(t, err)

	_, _, _, err = envelope.OpenRequest(text, otherPriv)
	require.Error(t, err)
}

func TestSealOpenResponseRoundTrip(t *testing.T) {
	depoPub, depoPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	clientPub, clientPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	payload, err := envelope.EncodeParams(struct {
		Receipt string `cbor:"receipt"`
	}{Receipt: "r1"})
	require.NoError(t, err)

	resp := envelope.ResponseBody{ID: "req-1", OK: true, Payload: payload}

	text, err := envelope.SealResponse(resp, depoPriv, clientPub)
	require.NoError(t, err)

	got, err := envelope.OpenResponse(text, clientPriv, depoPub)
	require.NoError(t, err)
	require.True(t, got.OK)
	require.Equal(t, resp.ID, got.ID)
}

func TestOpenResponseRejectsForgedSignature(t *testing.T) {
	depoPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	clientPub, clientPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	_, forgerPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	text, err := envelope.SealResponse(envelope.ResponseBody{ID: "1", OK: true}, forgerPriv, clientPub)
	require.NoError(t, err)

	_, err = envelope.OpenResponse(text, clientPriv, depoPub)
	require.Error(t, err)
}

func TestRawErrorEnvelopeIsStable(t *testing.T) {
	text := envelope.RawErrorEnvelope("malformed request")
	require.Contains(t, text, "ur:error/")
}

func TestContinuationCodecRoundTrip(t *testing.T) {
	depoPub, depoPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	oldPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	newPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	c := account.Continuation{
		OldKey: oldPub,
		NewKey: newPub,
		Expiry: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	codec := envelope.ContinuationCodec{}
	ctx := context.Background()

	text, err := codec.Encode(ctx, c, depoPriv, depoPub)
	require.NoError(t, err)

	got, err := codec.Decode(ctx, text, depoPriv)
	require.NoError(t, err)
	require.True(t, got.OldKey.Equal(c.OldKey))
	require.True(t, got.NewKey.Equal(c.NewKey))
	require.Equal(t, c.Expiry.Unix(), got.Expiry.Unix())
}

func TestContinuationCodecRejectsForeignDepositoryKey(t *testing.T) {
	depoPub, depoPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	_, otherPriv, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	oldPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	newPub, _, err := depocrypto.GenerateKeypair()
	require.NoError(t, err)

	c := account.Continuation{OldKey: oldPub, NewKey: newPub, Expiry: time.Now().Add(time.Hour)}

	codec := envelope.ContinuationCodec{}
	ctx := context.Background()

	text, err := codec.Encode(ctx, c, depoPriv, depoPub)
	require.NoError(t, err)

	_, err = codec.Decode(ctx, text, otherPriv)
	require.Error(t, err)
}
