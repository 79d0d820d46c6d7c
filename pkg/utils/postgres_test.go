package utils

import (
	"context"
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 5 || got.MaxIdleConns != 5 {
		t.Fatalf("unexpected pool sizes: %+v", got)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout %v", got.PingTimeout)
	}

	custom := PostgresPoolConfig{MaxOpenConns: 10}.withDefaults()
	if custom.MaxOpenConns != 10 {
		t.Fatalf("explicit values must be kept, got %d", custom.MaxOpenConns)
	}
}

func TestOpenPostgres_UnknownDriverFails(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), "no-such-driver", "", PostgresPoolConfig{}); err == nil {
		t.Fatalf("expected error for unregistered driver")
	}
}
