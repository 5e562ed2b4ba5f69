package txflow

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"go.uber.org/zap"
)

// Action is one prepared contract write: validated input, encoded value
// and the message to show once it is mined.
type Action struct {
	Method  string
	Success string
	// Pending replaces MsgConfirm while the wallet prompt is open.
	Pending string
	Value   *big.Int
	Invoke  func(ctx context.Context, w contract.Transactor) (*contract.PendingTx, error)
}

// Call builds an Action that sends method(args) with value attached.
func Call(method, success string, value *big.Int, args ...any) Action {
	return Action{
		Method:  method,
		Success: success,
		Value:   value,
		Invoke: func(ctx context.Context, w contract.Transactor) (*contract.PendingTx, error) {
			return w.Transact(ctx, method, value, args...)
		},
	}
}

// WriterFunc obtains a write handle. It is where chain alignment happens.
type WriterFunc func(ctx context.Context) (contract.Transactor, error)

// Outcome labels reported to Runner.Observe.
const (
	OutcomeSuccess  = "success"
	OutcomeReverted = "reverted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeBusy     = "busy"
)

// Runner drives an Action through a Machine.
type Runner struct {
	Machine *Machine
	Log     *zap.Logger
	// Observe is told the outcome of every Run.
	Observe func(method, outcome string)
}

// Run executes a: begin, obtain the writer, submit, wait for the receipt,
// succeed and refresh. Any failure lands the machine in error. While a
// transaction is pending Run returns ErrBusy without touching the wallet.
func (r *Runner) Run(ctx context.Context, write WriterFunc, a Action, refresh func(context.Context)) (Ticket, error) {
	log := r.logger().With(zap.String("method", a.Method))

	pending := a.Pending
	if pending == "" {
		pending = MsgConfirm
	}
	if err := r.Machine.BeginWith(pending); err != nil {
		r.observe(a.Method, OutcomeBusy)
		return Ticket{}, err
	}

	fail := func(err error) (Ticket, error) {
		t := r.Machine.Fail(err)
		msg, kind := apperr.Normalize(err)
		log.Warn("transaction failed", zap.String("kind", kind.String()), zap.String("reason", msg), zap.Error(err))
		r.observe(a.Method, outcomeFor(kind))
		return t, err
	}

	w, err := write(ctx)
	if err != nil {
		return fail(err)
	}
	tx, err := a.Invoke(ctx, w)
	if err != nil {
		return fail(err)
	}
	r.Machine.Submitted(tx.Hash.Hex())
	log.Info("waiting for receipt", zap.String("hash", tx.Hash.Hex()))

	if _, err := tx.Wait(ctx); err != nil {
		return fail(err)
	}
	t := r.Machine.Succeed(a.Success)
	log.Info("transaction mined", zap.String("hash", tx.Hash.Hex()))
	r.observe(a.Method, OutcomeSuccess)

	if refresh != nil {
		refresh(ctx)
	}
	return t, nil
}

func outcomeFor(k apperr.Kind) string {
	switch k {
	case apperr.Reverted:
		return OutcomeReverted
	case apperr.UserRejected, apperr.ChainSwitchRejected:
		return OutcomeRejected
	}
	return OutcomeFailed
}

func (r *Runner) observe(method, outcome string) {
	if r.Observe != nil {
		r.Observe(method, outcome)
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// WriterOf adapts a binder's write handle to a WriterFunc.
func WriterOf(b *contract.Binder) WriterFunc {
	return func(ctx context.Context) (contract.Transactor, error) {
		w, err := b.Write(ctx)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}
