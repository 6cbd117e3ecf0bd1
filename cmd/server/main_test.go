package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"auth_service/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ListenFailureReturnsError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	srv := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	quit := make(chan os.Signal)

	done := make(chan error, 1)
	go func() { done <- serve(srv, quit, logging.Discard()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "listen failed")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after listen failure")
	}
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	assert.NoError(t, serve(srv, quit, logging.Discard()))
}
