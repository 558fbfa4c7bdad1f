// Package pipeline implements the envelope request/response round trip:
// decrypt, unwrap, verify, dispatch to account logic, sign, encrypt. It is
// the single place that wires internal/schema's typed bodies to
// internal/account's operations and pkg/envelope's wire format.
package pipeline

import (
	"context"
	"errors"

	"github.com/blockchaincommons/go-depo/internal/account"
	"github.com/blockchaincommons/go-depo/internal/schema"
	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/depoerr"
	"github.com/blockchaincommons/go-depo/pkg/depotrace"
	"github.com/blockchaincommons/go-depo/pkg/envelope"
	"github.com/blockchaincommons/go-depo/pkg/mlog"
)

type handlerFunc func(ctx context.Context, p *Pipeline, callerKey depocrypto.PublicKey, params envelope.RequestBody) (any, error)

// Pipeline is the envelope entry point. One Pipeline serves every request;
// it holds no per-request state.
type Pipeline struct {
	Account *account.Service
	Logger  mlog.Logger

	depoPriv depocrypto.PrivateKey
	depoPub  depocrypto.PublicKey

	handlers map[string]handlerFunc
}

// New builds a Pipeline bound to svc and the depository's own keypair, used
// to open inbound envelopes and sign/seal responses.
func New(svc *account.Service, depoPriv depocrypto.PrivateKey, depoPub depocrypto.PublicKey, logger mlog.Logger) *Pipeline {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	p := &Pipeline{Account: svc, Logger: logger, depoPriv: depoPriv, depoPub: depoPub}

	p.handlers = map[string]handlerFunc{
		"storeShare":     handleStoreShare,
		"getShares":      handleGetShares,
		"deleteShares":   handleDeleteShares,
		"deleteAccount":  handleDeleteAccount,
		"updateKey":      handleUpdateKey,
		"updateRecovery": handleUpdateRecovery,
		"getRecovery":    handleGetRecovery,
		"startRecovery":  handleStartRecovery,
		"finishRecovery": handleFinishRecovery,
	}

	return p
}

// Handle is the single entry point: it takes the textual, sealed request
// envelope and returns the textual, sealed response envelope. It never
// returns a Go error — every failure is folded into a response envelope
// (or, when the request could not be opened or no sealed response can be
// addressed to the caller, into the unencrypted envelope.RawErrorEnvelope).
func (p *Pipeline) Handle(ctx context.Context, requestText string) string {
	req, signedData, sig, err := envelope.OpenRequest(requestText, p.depoPriv)
	if err != nil {
		p.Logger.Warnf("pipeline: could not open request envelope: %s", err)
		return envelope.RawErrorEnvelope("malformed or undecryptable request")
	}

	resp := p.dispatch(ctx, req, signedData, sig)

	// The caller's public key is only recoverable from a successfully
	// decrypted request; if its key parameter is missing or malformed, the
	// response cannot be sealed to the sender and goes out unencrypted.
	callerKey, keyErr := callerPublicKey(req)
	if keyErr != nil {
		return envelope.RawErrorEnvelope(keyErr.Error())
	}

	text, err := envelope.SealResponse(resp, p.depoPriv, callerKey)
	if err != nil {
		p.Logger.Errorf("pipeline: could not seal response: %s", err)
		return envelope.RawErrorEnvelope("internal error sealing response")
	}

	return text
}

func (p *Pipeline) dispatch(ctx context.Context, req envelope.RequestBody, signedData, sig []byte) (resp envelope.ResponseBody) {
	ctx, span := depotrace.Start(ctx, "pipeline.dispatch."+req.Function)
	defer func() {
		if !resp.OK {
			depotrace.HandleSpanError(span, "dispatch failed", errors.New(resp.Error))
		}
		span.End()
	}()

	callerKey, err := callerPublicKey(req)
	if err != nil {
		return errorResponse(req.ID, err)
	}

	if !envelope.VerifySignature(callerKey, signedData, sig) {
		return errorResponse(req.ID, depoerr.NewPreconditionError("request signature does not match request key"))
	}

	handler, ok := p.handlers[req.Function]
	if !ok {
		return errorResponse(req.ID, depoerr.NewRequestShapeError("unknown", "unknown function"))
	}

	payload, err := handler(ctx, p, callerKey, req)
	if err != nil {
		return errorResponse(req.ID, err)
	}

	if payload == nil {
		return envelope.ResponseBody{ID: req.ID, OK: true}
	}

	raw, err := envelope.EncodeParams(payload)
	if err != nil {
		return errorResponse(req.ID, err)
	}

	return envelope.ResponseBody{ID: req.ID, OK: true, Payload: raw}
}

// callerPublicKey extracts and decodes the request's "key" parameter,
// common to every one of the nine operations.
func callerPublicKey(req envelope.RequestBody) (depocrypto.PublicKey, error) {
	var holder struct {
		Key string `cbor:"key"`
	}

	if err := envelope.DecodeParams(req.Params, &holder); err != nil || holder.Key == "" {
		return depocrypto.PublicKey{}, depoerr.NewRequestShapeError(req.Function, "missing or malformed key parameter")
	}

	raw, err := depocrypto.DecodeText("pubkey", holder.Key)
	if err != nil {
		return depocrypto.PublicKey{}, depoerr.NewRequestShapeError(req.Function, "malformed public key")
	}

	return depocrypto.PublicKeyFromBytes(raw)
}

func errorResponse(id string, err error) envelope.ResponseBody {
	return envelope.ResponseBody{ID: id, OK: false, Error: diagnosticMessage(err)}
}

// diagnosticMessage renders err as a wire-safe string. Known depoerr kinds
// surface their own message; anything else (a store transport failure, a
// bug) is flattened to a generic message so the pipeline never leaks
// internal detail.
func diagnosticMessage(err error) string {
	var notFound depoerr.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}

	var conflict depoerr.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}

	var precondition depoerr.PreconditionError
	if errors.As(err, &precondition) {
		return precondition.Error()
	}

	var shape depoerr.RequestShapeError
	if errors.As(err, &shape) {
		return shape.Error()
	}

	return "internal error"
}

func decodeReceipts(raw []string) map[store.Receipt]struct{} {
	out := make(map[store.Receipt]struct{}, len(raw))

	for _, s := range schema.DedupStrings(raw) {
		b, err := depocrypto.DecodeText("receipt", s)
		if err != nil {
			continue
		}

		var r store.Receipt
		copy(r[:], b)
		out[r] = struct{}{}
	}

	return out
}

func encodeReceipts(receipts map[store.Receipt][]byte) schema.GetSharesResponse {
	out := make(schema.GetSharesResponse, len(receipts))

	for r, data := range receipts {
		out[depocrypto.EncodeText("receipt", r[:])] = data
	}

	return out
}
