// Package config loads flare's runtime configuration.
//
// # Overview
//
// Values are resolved by viper with the usual precedence: command-line flag,
// then environment variable, then config file, then the defaults registered
// by SetDefaults (which come from pkg/codegen/config).
//
// # Config File
//
// The CLI discovers .flare.yaml in the working directory or the user's home
// directory unless --config names a file explicitly:
//
//	log:
//	  level: debug
//	  format: json
//	project:
//	  name: MyPlugin
//	  version: 1.4.0
//	cache:
//	  redis_addr: localhost:6379
//	archive:
//	  s3_bucket: build-cache
//	  s3_region: us-east-1
//
// # Environment
//
// Every key maps to FLARE_<SECTION>_<KEY>:
//
//	FLARE_LOG_LEVEL="debug"
//	FLARE_ENGINE_MAX_PARALLEL_WORKERS="2"
//	FLARE_CACHE_REDIS_ADDR="redis:6379"
//	FLARE_ARCHIVE_S3_BUCKET="build-cache"
//	FLARE_TELEMETRY_ENABLED="true"
//	FLARE_WATCH_METRICS_ADDR=":9090"
package config
