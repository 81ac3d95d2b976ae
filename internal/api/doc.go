// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package api provides the HTTP surfaces of the emotion and recommend services.

Each service gets its own chi router and listener:

	emotion (:8000)
	  POST /emotion/predict        multipart upload, field "file"
	recommend (:8001)
	  POST /recommend/by-title     {"title": "...", "n": 5}
	  POST /recommend/by-track-id  {"track_id": "...", "n": 5}
	  POST /recommend/from-multiple {"titles": [...], "n": 5}
	  GET  /recommend/stats
	both
	  GET  /health/live, /health/ready, /metrics

Errors use a single body shape:

	{"detail": "Song 'x' not found in the dataset", "code": "NOT_FOUND", "request_id": "..."}

Request validation failures answer 422 with "detail" holding a list of
{loc, msg, type} objects, which is what existing FastAPI clients parse.

Middleware order is request ID, service logger, RealIP, Recoverer, CORS,
Prometheus metrics, access log, then per-route rate limits from go-chi/httprate.
*/
package api
