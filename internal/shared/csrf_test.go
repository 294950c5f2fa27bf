package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewCSRFManager("csrf-secret")
	sess := &Session{ID: "abc"}

	token, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, token+"x"), ErrCSRFTokenMismatch)
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	ctx := context.Background()
	m := NewCSRFManager("csrf-secret")
	sess := &Session{ID: "abc"}
	token, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)

	sess.ID = "renewed"
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, token), ErrCSRFTokenMismatch)

	fresh, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)
	assert.NoError(t, m.VerifyToken(ctx, sess, fresh))
}

func TestCSRFOtherSecretRejected(t *testing.T) {
	ctx := context.Background()
	sess := &Session{ID: "abc"}
	token, err := NewCSRFManager("one").EnsureToken(ctx, sess)
	require.NoError(t, err)

	assert.ErrorIs(t, NewCSRFManager("two").VerifyToken(ctx, sess, token), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, NewCSRFManager("one").VerifyToken(ctx, nil, token), ErrCSRFTokenMissing)
}
