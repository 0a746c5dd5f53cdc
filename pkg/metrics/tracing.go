package metrics

import (
	"context"
	"errors"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer times a single method call as a segment of the transaction
// found in the calling context. A nil *MethodTracer is valid and records
// nothing, which is what callers get when no transaction is in flight.
type MethodTracer struct {
	name string
	txn  *newrelic.Transaction
	seg  *newrelic.Segment
}

// TraceMethodCall starts a "<component> <method>" segment on the transaction
// carried by ctx.
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	name := component + " " + method
	return &MethodTracer{
		name: name,
		txn:  txn,
		seg:  txn.StartSegment(name),
	}
}

// AddAttribute attaches metadata to the segment
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// OnError reports err against the transaction, classed by the traced method.
// Cancellations initiated by the caller are not reported.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	t.seg.AddAttribute("error", err.Error())
	t.txn.NoticeError(newrelic.Error{
		Message: err.Error(),
		Class:   t.name,
	})
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
