// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails the test unless err is a coded error carrying
// code. Driftway codes are lowercase snake_case, e.g. "room_not_found"
// or "world_name_taken".
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want a coded error with %q, got %T: %v", code, err, err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertErrorContext fails the test unless err is a coded error whose
// context holds the given key/value pair.
func AssertErrorContext(t *testing.T, err error, key string, want any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want a coded error carrying %q, got %T: %v", key, err, err)
	got, present := oopsErr.Context()[key]
	require.Truef(t, present, "error context has no %q key", key)
	assert.Equal(t, want, got)
}
