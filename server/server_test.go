package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/chazu/intcode/wire"
)

func startTestServer(t *testing.T) (*IntcodeServer, string, chan error) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	s := New(WithWorkers(1))
	served := make(chan error, 1)
	go func() { served <- s.Serve(lis) }()
	return s, "http://" + lis.Addr().String(), served
}

func TestShutdownIdle(t *testing.T) {
	s, url, served := startTestServer(t)

	client := NewClient(http.DefaultClient, url)
	if _, err := client.Run(bg(), &wire.RunRequest{Program: []int64{99}}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(bg(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestShutdownCancelsEndlessProgram(t *testing.T) {
	s, url, served := startTestServer(t)

	client := NewClient(http.DefaultClient, url)
	runErr := make(chan error, 1)
	go func() {
		_, err := client.Run(bg(), &wire.RunRequest{Program: []int64{1105, 1, 0}})
		runErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(bg(), 50*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Shutdown(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Shutdown err = %v, want DeadlineExceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown hung on a running program")
	}
	select {
	case err := <-runErr:
		if err == nil {
			t.Error("endless Run should fail once the server shuts down")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client Run did not return")
	}
	if err := <-served; err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
}

func TestRun_ContextCancelsEndlessProgram(t *testing.T) {
	pool := NewPool(1)
	defer pool.Stop()
	svc := NewMachineService(pool)

	ctx, cancel := context.WithTimeout(bg(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Run(ctx, &wire.RunRequest{Program: []int64{1105, 1, 0}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run err = %v, want DeadlineExceeded", err)
	}

	// The worker is free again once the machine notices cancellation.
	resp, err := svc.Run(bg(), &wire.RunRequest{Program: []int64{1101, 1, 1, 0, 99}})
	if err != nil {
		t.Fatalf("Run after cancellation returned error: %v", err)
	}
	if resp.Result != 2 {
		t.Errorf("Result = %d, want 2", resp.Result)
	}
}
