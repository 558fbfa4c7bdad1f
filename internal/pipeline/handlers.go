package pipeline

import (
	"context"

	"github.com/blockchaincommons/go-depo/internal/schema"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/depoerr"
	"github.com/blockchaincommons/go-depo/pkg/envelope"
)

func handleStoreShare(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.StoreShareRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed storeShare request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	receipt, err := p.Account.StoreShare(ctx, k, body.Data)
	if err != nil {
		return nil, err
	}

	return schema.StoreShareResponse{Receipt: depocrypto.EncodeText("receipt", receipt[:])}, nil
}

func handleGetShares(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.GetSharesRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed getShares request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	records, err := p.Account.GetShares(ctx, k, decodeReceipts(body.Receipt))
	if err != nil {
		return nil, err
	}

	return encodeReceipts(records), nil
}

func handleDeleteShares(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.DeleteSharesRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed deleteShares request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	return nil, p.Account.DeleteShares(ctx, k, decodeReceipts(body.Receipt))
}

func handleDeleteAccount(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, _ envelope.RequestBody) (any, error) {
	return nil, p.Account.DeleteAccount(ctx, k)
}

func handleUpdateKey(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.UpdateKeyRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed updateKey request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	newKeyRaw, err := depocrypto.DecodeText("pubkey", body.NewKey)
	if err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed newKey parameter")
	}

	newKey, err := depocrypto.PublicKeyFromBytes(newKeyRaw)
	if err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed newKey parameter")
	}

	return nil, p.Account.UpdateKey(ctx, k, newKey)
}

func handleUpdateRecovery(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.UpdateRecoveryRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed updateRecovery request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	return nil, p.Account.UpdateRecovery(ctx, k, body.Recovery)
}

func handleGetRecovery(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, _ envelope.RequestBody) (any, error) {
	recovery, err := p.Account.GetRecovery(ctx, k)
	if err != nil {
		return nil, err
	}

	return schema.GetRecoveryResponse{Recovery: recovery}, nil
}

func handleStartRecovery(ctx context.Context, p *Pipeline, _ depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.StartRecoveryRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed startRecovery request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	newKeyRaw, err := depocrypto.DecodeText("pubkey", body.Key)
	if err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed key parameter")
	}

	newKey, err := depocrypto.PublicKeyFromBytes(newKeyRaw)
	if err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed key parameter")
	}

	continuation, err := p.Account.StartRecovery(ctx, body.Recovery, newKey)
	if err != nil {
		return nil, err
	}

	return schema.StartRecoveryResponse{Continuation: continuation}, nil
}

func handleFinishRecovery(ctx context.Context, p *Pipeline, k depocrypto.PublicKey, req envelope.RequestBody) (any, error) {
	var body schema.FinishRecoveryRequest
	if err := envelope.DecodeParams(req.Params, &body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, "malformed finishRecovery request")
	}

	if err := schema.Validate(body); err != nil {
		return nil, depoerr.NewRequestShapeError(req.Function, err.Error())
	}

	return nil, p.Account.FinishRecovery(ctx, body.Continuation, k)
}
