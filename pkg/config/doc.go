// Package config provides application configuration management from environment variables.
//
// # Overview
//
// Variables are parsed into tagged structs with caarlos0/env and then validated.
// Every setting has a default, so the bridge starts with no configuration at all.
//
// # Configuration Structure
//
// Server settings:
//
//	BRIDGE_HOST="0.0.0.0"
//	BRIDGE_PORT="5001"
//	BRIDGE_HEALTH_PORT="9090"
//	BRIDGE_API_PREFIX="/api"
//	BRIDGE_CORS_ORIGINS="http://localhost:3000"
//	BRIDGE_DEV_ENDPOINTS="true"
//	BRIDGE_ENFORCE_GROUP_ACCESS="false"
//	BRIDGE_LOGIN_RATE="1"
//	BRIDGE_LOGIN_BURST="5"
//
// Session settings:
//
//	BRIDGE_SESSION_TTL="24h"
//	BRIDGE_SESSION_STORE="memory"  # memory, redis
//	BRIDGE_SESSION_COOKIE="session"
//	BRIDGE_COOKIE_SECURE="false"
//	BRIDGE_SESSION_SWEEP="@every 5m"
//	BRIDGE_REDIS_URL="redis://localhost:6379"
//
// Directory settings:
//
//	BRIDGE_DIRECTORY_FILE="/etc/vortex-bridge/users.yaml"
//	BRIDGE_EMAIL_CASE_INSENSITIVE="false"
//
// Vortex settings:
//
//	VORTEX_API_KEY="VRTX...."  # falls back to demo-api-key
//	VORTEX_BASE_URL="https://api.vortexsoftware.com/api/v1"
//	VORTEX_TIMEOUT="10s"
//	BRIDGE_ASSERTION_TTL="1h"
//	BRIDGE_ACCEPT_CONCURRENCY="4"
//
// Observability settings:
//
//	BRIDGE_LOG_LEVEL="info"  # debug, info, warn, error
//	BRIDGE_LOG_FORMAT="json" # json, text
//	BRIDGE_METRICS_ENABLED="true"
//	BRIDGE_OTEL_ENABLED="true"
//	BRIDGE_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Listening on %s\n", cfg.Server.Addr())
//
// # Related Packages
//
//   - pkg/session: Uses session configuration
//   - pkg/observability: Uses observability configuration
package config
