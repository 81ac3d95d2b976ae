// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Command server runs the Echonova ML inference services.

Two HTTP listeners are hosted in one process under a Suture v4 tree:

	RootSupervisor ("echonova")
	├── DataSupervisor ("data-layer")
	│   └── cache-gc (on-disk result cache only)
	└── APISupervisor ("api-layer")
	    ├── emotion-http   :8000  POST /emotion/predict
	    └── recommend-http :8001  POST /recommend/by-title
	                              POST /recommend/by-track-id
	                              POST /recommend/from-multiple
	                              GET  /recommend/stats

Both listeners also serve /health/live, /health/ready and /metrics.

# Startup

 1. Configuration is loaded with koanf (defaults, YAML file, environment).
 2. The emotion model is loaded. A missing model is logged and the service
    answers 500 per request, unless EMOTION_REQUIRE_MODEL=true.
 3. The song catalog is loaded and clustered. Failure here is fatal.
 4. The result cache is opened and the supervisor tree starts.

SIGINT and SIGTERM shut the listeners down gracefully (SHUTDOWN_TIMEOUT).

# Examples

	SONGS_CATALOG_PATH=data/songs.json \
	EMOTION_MODEL_PATH=models/emotion/model.json \
	EMOTION_WEIGHTS_PATH=models/emotion/model.safetensors \
	./server

	RECOMMEND_CACHE_PATH=/var/cache/echonova LOG_FORMAT=console ./server

The check subcommand calls running services and prints the JSON answers:

	./server check -title "Blue in Green" -n 3
	./server check -image face.jpg
*/
package main
