// Package testutil starts a real board server for end-to-end tests.
package testutil

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"

	"github.com/projboard/projboard/internal/client"
	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/server"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/internal/view"
)

// TestServer wraps a running board server for testing
type TestServer struct {
	Server  *server.Server
	BaseURL string
	Store   *state.Store
	Board   *view.Board
	Bus     *event.Bus

	done chan error
}

// TestServerOption configures TestServer
type TestServerOption func(*testServerConfig)

type testServerConfig struct {
	envFile   string
	storeOpts []state.Option
}

// WithEnvFile sets the .env file to load
func WithEnvFile(path string) TestServerOption {
	return func(c *testServerConfig) {
		c.envFile = path
	}
}

// WithStoreOptions passes options to the project store
func WithStoreOptions(opts ...state.Option) TestServerOption {
	return func(c *testServerConfig) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// StartTestServer creates and starts a test server on a free local port
func StartTestServer(opts ...TestServerOption) (*TestServer, error) {
	cfg := &testServerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.envFile != "" {
		_ = godotenv.Load(cfg.envFile)
	} else {
		_ = godotenv.Load("../../.env")
	}

	store := state.New(cfg.storeOpts...)
	bus := event.NewBus()

	board, err := view.NewBoard(store, bus)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Port = ln.Addr().(*net.TCPAddr).Port
	srv := server.New(serverConfig, store, board, bus)

	ts := &TestServer{
		Server:  srv,
		BaseURL: "http://" + ln.Addr().String(),
		Store:   store,
		Board:   board,
		Bus:     bus,
		done:    make(chan error, 1),
	}
	go func() {
		ts.done <- srv.Serve(ln)
	}()

	if err := waitForServer(ts.BaseURL, 10*time.Second); err != nil {
		_ = ln.Close()
		bus.Close()
		return nil, fmt.Errorf("server failed to start: %w", err)
	}
	return ts, nil
}

// Stop shuts down the test server
func (ts *TestServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := ts.Server.Shutdown(ctx)
	if err == nil {
		err = <-ts.done
	}
	ts.Bus.Close()
	return err
}

// Client returns a new API client for this server
func (ts *TestServer) Client() *client.Client {
	return client.New(ts.BaseURL)
}

// waitForServer waits for the health endpoint to answer
func waitForServer(baseURL string, timeout time.Duration) error {
	c := client.New(baseURL)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := c.Health(ctx)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}
