// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package supervisor runs the long-lived parts of the process under suture v4.

The tree has two layers:

	echonova
	├── data-layer
	│   └── cache-gc (only for an on-disk result cache)
	└── api-layer
	    ├── emotion-http
	    └── recommend-http

Each layer counts failures on its own, so a cache GC that keeps failing
backs off without touching the listeners. Supervisor events are logged
through sutureslog, which is fed the zerolog-backed slog handler from
internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService("emotion-http", srv, 10*time.Second, logger))
	err = tree.Serve(ctx)

The recommend model is built before its listener is added, so every
request sees a fully built, immutable model.
*/
package supervisor
