package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

// freeAddr выделяет свободный локальный порт для теста.
func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()
	return addr
}

func TestRun_StartsAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = freeAddr(t)
	cfg.MetricsAddr = freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	// Ждём, пока сервер начнёт отвечать.
	livezURL := fmt.Sprintf("http://%s/livez", cfg.MetricsAddr)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(livezURL)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("metrics server did not start: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	// API отвечает: без идентичности получаем 401, не connection refused.
	resp, err := http.Get(fmt.Sprintf("http://%s/cart", cfg.HTTPAddr))
	if err != nil {
		cancel()
		t.Fatalf("api server not reachable: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		cancel()
		t.Fatalf("expected 401 without identity, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
