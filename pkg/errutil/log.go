// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package errutil unpacks driftway's coded errors. Failures across the
// game wrap their cause with samber/oops codes ("room_not_found",
// "move_failed", "oracle_failed") plus key/value context; the helpers
// here surface that structure in logs and test assertions.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError writes err to logger at error level. A coded error
// contributes its code and context as structured attributes so a log
// line for a failed move carries the player and direction, not just a
// wrapped message. A plain error logs as a bare string.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := make([]any, 0, 6)
	attrs = append(attrs, "error", oopsErr.Error())
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if c := oopsErr.Context(); len(c) > 0 {
		attrs = append(attrs, "context", c)
	}
	logger.Error(msg, attrs...)
}
