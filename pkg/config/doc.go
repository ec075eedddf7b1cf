// Package config provides configuration management for dbhub.
//
// Configuration is loaded once at startup from defaults, an optional YAML
// file and environment variables, in that order of precedence. The result is
// passed by pointer to the components that need it and is not modified
// afterwards.
//
// # Configuration Sources
//
//   - Environment variables (highest precedence)
//   - $DBHUB_CONFIG_PATH/dbhub.yml (optional)
//   - Built-in defaults
//
// # Key Configuration Options
//
//   - DBHUB_TOKEN_SECRET: HMAC secret for session tokens (required)
//   - DATABASE_URL: PostgreSQL connection string
//   - DBHUB_LOG_LEVEL / DBHUB_LOG_FORMAT: logrus level and formatter
//   - DBHUB_LOOKUP_TIMEOUT: seconds allowed for a membership lookup
//   - PORT / BIND_ADDRESS: server listen address
package config
