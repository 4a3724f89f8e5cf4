package upload

import (
	"context"
	"fmt"
	"log/slog"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/storage"
)

// Workflow turns card metadata into an uploaded artifact. It holds the one
// storage client and wallet credential configured at startup.
type Workflow struct {
	client storage.Client
	cred   storage.Credential
	logger *slog.Logger
}

func NewWorkflow(client storage.Client, cred storage.Credential, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{client: client, cred: cred, logger: logger}
}

// Submit builds the artifact, prices it, and posts it. It never returns an
// error: every failure is folded into a Failed result. Fee estimation is a
// prerequisite, so a failed estimate fails the whole submit.
func (w *Workflow) Submit(ctx context.Context, m card.Metadata) Result {
	artifact, err := card.BuildArtifact(m)
	if err != nil {
		w.logger.Error("failed to build artifact", "error", err)
		return Failed(StageBuild, err.Error())
	}
	payload := card.Payload(artifact)

	feeAtomic, err := w.client.EstimateFee(ctx, payload)
	if err != nil {
		w.logger.Error("fee estimation failed", "bytes", len(payload), "error", err)
		return Failed(StageFee, err.Error())
	}
	fee := storage.ToDisplayUnit(feeAtomic)
	w.logger.Debug("fee estimated", "bytes", len(payload), "fee", fee)

	receipt, err := w.client.Submit(ctx, payload, w.cred)
	if err != nil {
		w.logger.Error("submission failed", "error", err)
		return Failed(StageSubmit, err.Error())
	}
	if !receipt.Success {
		w.logger.Warn("submission rejected", "status", receipt.StatusCode)
		r := Failed(StageSubmit, fmt.Sprintf("status %d", receipt.StatusCode))
		r.StatusCode = receipt.StatusCode
		return r
	}

	w.logger.Info("artifact uploaded", "id", receipt.TransactionID, "fee", fee)
	return Succeeded(receipt.TransactionID, fee)
}

// RefreshBalance returns the wallet balance in display units, or
// BalanceUnavailable if it cannot be read.
func (w *Workflow) RefreshBalance(ctx context.Context) string {
	addr, err := w.client.ResolveAddress(ctx, w.cred)
	if err != nil {
		w.logger.Error("error fetching balance", "error", err)
		return BalanceUnavailable
	}
	atomic, err := w.client.GetBalance(ctx, addr)
	if err != nil {
		w.logger.Error("error fetching balance", "address", addr, "error", err)
		return BalanceUnavailable
	}
	return storage.ToDisplayUnit(atomic)
}

// Err returns the failure as an error wrapping ErrFeeEstimation or
// ErrSubmission, or nil when the result is not a failure.
func (r Result) Err() error {
	if r.Status != StatusFailed {
		return nil
	}
	switch r.Stage {
	case StageFee:
		return fmt.Errorf("%w: %s", ErrFeeEstimation, r.Reason)
	case StageSubmit:
		return fmt.Errorf("%w: %s", ErrSubmission, r.Reason)
	default:
		return fmt.Errorf("upload failed: %s", r.Reason)
	}
}
