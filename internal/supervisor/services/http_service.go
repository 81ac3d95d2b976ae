// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is given.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs one listener under suture. Each surface (emotion,
// recommend) gets its own instance so one listener failing to bind does not
// take down the other.
type HTTPServerService struct {
	server          HTTPServer
	name            string
	addr            string
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. name identifies the listener in
// supervisor events, e.g. "emotion-http".
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewHTTPServerService(name string, server *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	svc := newHTTPServerService(name, server, shutdownTimeout, logger)
	svc.addr = server.Addr
	return svc
}

//nolint:gocritic // zerolog.Logger is passed by value
func newHTTPServerService(name string, server HTTPServer, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &HTTPServerService{
		server:          server,
		name:            name,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service. It returns nil after a graceful shutdown
// and an error when the listener fails, which makes suture restart it.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	h.logger.Info().Str("addr", h.addr).Msg("listener started")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: listen: %w", h.name, err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled, so shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: shutdown: %w", h.name, err)
		}
		<-errCh
		h.logger.Info().Msg("listener stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture event logs.
func (h *HTTPServerService) String() string {
	return h.name
}
