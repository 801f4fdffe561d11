// Package config loads runtime configuration for the gymkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c / --config.
//  3. Command-line flags that were set explicitly, which override earlier values.
//
// Supported flags
//
//	-a, --api string            base URL of the gym API
//	-s, --storage string        path of the local SQLite database
//	-i, --check-interval dur    expiry watcher tick
//	    --timeout dur           per-request timeout
//	    --online-interval dur   server reachability check interval
//	    --log-level string      debug, info, warn or error
//	    --metrics-addr string   serve /metrics on this address (off when empty)
//
// # File schema
//
// The file loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds. The format is picked by the file
// extension (.json, .yaml, .yml):
//
//	api_base_url: http://127.0.0.1:8000
//	storage_path: ~/.gymkeeper/client.db
//	expiry_check_interval: 1s
//	request_timeout: 10s
//	online_check_interval: 3s
//	log_level: info
//	metrics_addr: 127.0.0.1:9464
//
// Keys missing from the file keep their earlier value.
package config
