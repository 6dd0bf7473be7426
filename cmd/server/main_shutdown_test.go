package main

import (
	"net"
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func fakeSignal(t *testing.T, sig os.Signal) {
	t.Helper()
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- sig
		}()
	}
}

func TestShutdownSignals(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGTERM, syscall.SIGINT} {
		t.Run(sig.String(), func(t *testing.T) {
			fakeSignal(t, sig)

			server := &http.Server{}
			called := make(chan struct{}, 1)
			server.RegisterOnShutdown(func() {
				called <- struct{}{}
			})

			shutdown(server, time.Millisecond, zaptest.NewLogger(t))

			select {
			case <-called:
			case <-time.After(time.Second):
				t.Fatalf("expected server shutdown callback to execute")
			}
		})
	}
}

func TestShutdownForcesCloseOnTimeout(t *testing.T) {
	fakeSignal(t, syscall.SIGTERM)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	})}
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() {
		close(release)
	})

	go func() {
		resp, err := http.Get("http://" + listener.Addr().String())
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("request never reached the handler")
	}

	done := make(chan struct{})
	go func() {
		shutdown(server, 10*time.Millisecond, zaptest.NewLogger(t))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("shutdown did not return after its grace period")
	}

	if _, err := http.Get("http://" + listener.Addr().String()); err == nil {
		t.Fatalf("expected server to stop accepting connections")
	}
}
