package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRevocations_DisabledIsFailSafe(t *testing.T) {
	r := NewRevocations("", "", 0)
	require.Nil(t, r)

	ctx := context.Background()
	require.NoError(t, r.Revoke(ctx, "jti", time.Minute))
	require.False(t, r.IsRevoked(ctx, "jti"))
	require.NoError(t, r.Close())
}

func TestRevocations_NonPositiveTTLSkipsServer(t *testing.T) {
	r := NewRevocations("127.0.0.1:1", "", 0)
	require.NotNil(t, r)
	defer r.Close()

	require.NoError(t, r.Revoke(context.Background(), "jti", 0))
}
