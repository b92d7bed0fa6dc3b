package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresPingWithoutPool(t *testing.T) {
	// The readiness probe pings through the wrapper even when no DSN was
	// configured; it must report an error instead of panicking.
	p := &Postgres{Pool: nil}
	require.Error(t, p.Ping(context.Background()))

	var nilHandle *Postgres
	require.Error(t, nilHandle.Ping(context.Background()))
	require.Nil(t, nilHandle.PoolHandle())
}

func TestRedisPingWithoutClient(t *testing.T) {
	r := &Redis{Client: nil}
	require.Error(t, r.Ping(context.Background()))
}
