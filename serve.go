// Copyright 2026 The Weft Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// shutdownGrace bounds how long in-flight requests may take to drain once
// the serve context is canceled.
const shutdownGrace = 10 * time.Second

// Serve starts an HTTP server on addr with the App as handler, using the
// configured server timeouts and, when enabled, HTTP/2 Cleartext. It blocks
// until the server stops.
//
// For graceful shutdown tie the server to a context with ServeContext.
func (a *App) Serve(addr string) error {
	return a.ServeContext(context.Background(), addr)
}

// ServeContext is like Serve but shuts the server down gracefully when ctx
// is canceled, draining in-flight requests for up to 10 seconds.
func (a *App) ServeContext(ctx context.Context, addr string) error {
	var handler http.Handler = a
	if a.enableH2C {
		handler = h2c.NewHandler(a, &http2.Server{})
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: a.timeouts.readHeader,
		ReadTimeout:       a.timeouts.read,
		WriteTimeout:      a.timeouts.write,
		IdleTimeout:       a.timeouts.idle,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "h2c", a.enableH2C)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	a.logger.Info("server shutting down", "addr", addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server on %s: %w", addr, err)
	}

	return nil
}
