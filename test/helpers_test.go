//go:build integration
// +build integration

package test

import (
	"encoding/hex"
	"testing"

	"github.com/quayside/marketauth/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T) (*session.Store, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(rdb, "mas")

	return store, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func hashHex(b byte) string {
	var raw [32]byte
	for i := 0; i < len(raw); i++ {
		raw[i] = b
	}
	return hex.EncodeToString(raw[:])
}
