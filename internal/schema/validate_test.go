package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockchaincommons/go-depo/internal/schema"
)

func TestValidateRejectsMissingKey(t *testing.T) {
	err := schema.Validate(schema.StoreShareRequest{Data: []byte{1}})
	require.Error(t, err)
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	err := schema.Validate(schema.StoreShareRequest{Key: "ur:pubkey/abc", Data: []byte{1}})
	require.NoError(t, err)
}

func TestValidateAllowsEmptyReceiptList(t *testing.T) {
	err := schema.Validate(schema.GetSharesRequest{Key: "ur:pubkey/abc"})
	require.NoError(t, err)
}

func TestValidateRejectsEmptyReceiptElement(t *testing.T) {
	err := schema.Validate(schema.GetSharesRequest{Key: "ur:pubkey/abc", Receipt: []string{""}})
	require.Error(t, err)
}

func TestValidateAcceptsSameKeyRotation(t *testing.T) {
	// Same-key rotation is a no-op the account layer rejects via the
	// "public key already in use" conflict check, not a schema-level error.
	err := schema.Validate(schema.UpdateKeyRequest{Key: "ur:pubkey/abc", NewKey: "ur:pubkey/abc"})
	require.NoError(t, err)
}

func TestValidateRejectsMissingNewKey(t *testing.T) {
	err := schema.Validate(schema.UpdateKeyRequest{Key: "ur:pubkey/abc"})
	require.Error(t, err)
}
