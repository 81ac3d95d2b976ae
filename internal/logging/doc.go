// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package logging is the process-wide zerolog setup shared by both inference services.

The emotion classifier, the catalog loader, the recommendation engine, the HTTP layer
and the outbound client all log through one global logger configured by Init.
Components take a child logger via WithComponent so every line carries a
"component" field:

	logger := logging.WithComponent("recommend")
	logger.Info().Int("songs", n).Dur("took", d).Msg("model built")

Request-scoped lines go through Ctx, which attaches request_id and correlation_id
when the API middleware has stored them:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("prediction failed")

# Configuration

	LOG_LEVEL   trace, debug, info, warn, error (default info)
	LOG_FORMAT  json or console (default json)
	LOG_CALLER  include file:line (default false)

# Supervisor integration

suture reports through log/slog. NewSlogLogger returns an *slog.Logger whose
handler forwards records to zerolog, so supervisor events land in the same stream:

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
*/
package logging
