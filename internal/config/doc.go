// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package config loads server configuration with koanf.

Sources are layered, later ones winning:

 1. built-in defaults (defaultConfig)
 2. a YAML file: $CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/echonova/config.yaml
 3. environment variables named in envMappings, e.g. LOG_LEVEL,
    SONGS_CATALOG_PATH, EMOTION_MODEL_PATH, CORS_ORIGINS

Durations accept Go syntax ("90s", "10m"). CORS_ORIGINS may be a
comma-separated list.

Example file:

	server:
	  emotion_addr: ":8000"
	  recommend_addr: ":8001"
	emotion:
	  model_path: models/emotion/model.json
	  weights_path: models/emotion/model.safetensors
	recommend:
	  catalog_path: data/songs.json
	  clusters: 40
	  seed: 42
	cache:
	  path: /var/cache/echonova
	  ttl: 10m

Load validates the merged result and returns the first problem found,
named by its environment variable.
*/
package config
