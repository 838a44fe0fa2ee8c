// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/driftway/driftway/pkg/errutil"
)

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("room_not_found").Errorf("no room at (2,-1)")
	errutil.AssertErrorCode(t, err, "room_not_found")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.Code("player_persist_failed").With("player", "Bram").Errorf("write failed")
	errutil.AssertErrorContext(t, err, "player", "Bram")
}
