// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type fakeServer struct {
	listenErr    error
	shutdownErr  error
	shutdownDone chan struct{}
	closed       chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		shutdownDone: make(chan struct{}),
		closed:       make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	close(f.closed)
	close(f.shutdownDone)
	return f.shutdownErr
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newFakeServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Serve to return")
	}

	select {
	case <-server.shutdownDone:
	default:
		t.Error("Expected Shutdown to have been called")
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	listenErr := errors.New("bind failed")
	server := newFakeServer()
	server.listenErr = listenErr
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, listenErr) {
		t.Errorf("Expected listen error propagated, got %v", err)
	}
}

func TestHTTPServerService_ShutdownError(t *testing.T) {
	shutdownErr := errors.New("connections hung")
	server := newFakeServer()
	server.shutdownErr = shutdownErr
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, shutdownErr) {
			t.Errorf("Expected shutdown error propagated, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Serve to return")
	}
}

func TestHTTPServerService_DefaultTimeout(t *testing.T) {
	svc := NewHTTPServerService(newFakeServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("Expected 10s default timeout, got %s", svc.shutdownTimeout)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newFakeServer(), time.Second)
	if svc.String() != "http-server" {
		t.Errorf("Unexpected service name: %q", svc.String())
	}
}
