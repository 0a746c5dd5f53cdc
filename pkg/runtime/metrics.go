package runtime

import (
	"context"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/sol-vault/pkg/metrics"
	"github.com/code-payments/sol-vault/pkg/solana"
)

const (
	metricsStructName = "runtime.bank"

	instructionProcessedEventName    = "InstructionProcessed"
	instructionDurationMetricName    = "Runtime/InstructionDuration"
	commitAttemptsExceededMetricName = "Runtime/CommitAttemptsExceeded"
)

func recordInstructionProcessedEvent(ctx context.Context, program []byte, attempts uint, duration time.Duration, err error) {
	kvPairs := map[string]interface{}{
		"program":     base58.Encode(program),
		"attempts":    attempts,
		"duration_ms": duration.Milliseconds(),
		"success":     err == nil,
	}

	if instructionErr, ok := err.(solana.InstructionError); ok {
		kvPairs["error_key"] = string(instructionErr.ErrorKey())
	}

	metrics.RecordEvent(ctx, instructionProcessedEventName, kvPairs)
	metrics.RecordDuration(ctx, instructionDurationMetricName, duration)
}

func recordCommitAttemptsExceeded(ctx context.Context) {
	metrics.RecordCount(ctx, commitAttemptsExceededMetricName, 1)
}
