// Package config loads the converter's configuration.
//
// # Configuration Sources
//
// Values are layered, later sources overriding earlier ones:
//
//	1. Default()
//	2. A YAML file: $PWC_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables prefixed with PWC_
//
// Environment variable names join the section and field names:
//
//	PWC_SERVER_PORT=9090
//	PWC_SECURITY_ALLOWED_ORIGINS=https://a.example,https://b.example
//	PWC_LOGGING_LEVEL=debug
//	PWC_PROCESSING_WORKERS=4
//	PWC_TELEMETRY_TRACE_EXPORTER=stdout
//
// An example file:
//
//	server:
//	  port: 8080
//	  max_upload_bytes: 33554432
//	processing:
//	  sheet: Weekly
//	  output_format: xlsx
package config
