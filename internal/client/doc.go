// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package client is the Go caller for the emotion and recommend services, for
backends that consume them over HTTP.

Each service gets its own golang.org/x/time/rate limiter and sony/gobreaker
circuit breaker. Breaker state is exported through the echonova_circuit_breaker_*
metrics. Only transport errors and 5xx answers count as failures; a 404 for an
unknown song is a normal answer and never opens the circuit.

Non-2xx answers come back as *APIError:

	resp, err := c.RecommendByTitle(ctx, "Blue in Green", 5)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		// unknown title
	}
*/
package client
