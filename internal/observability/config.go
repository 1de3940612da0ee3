package observability

import (
	"strings"

	"github.com/smallbiznis/solarflow/internal/config"
)

// Config holds observability settings. Values come from the application
// config and may be overridden by the standard OTEL_* variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "solarflow"
	}

	endpoint := config.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT", strings.TrimSpace(cfg.OTLPEndpoint))
	protocol := config.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL",
		config.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))

	return Config{
		ServiceName:          serviceName,
		Environment:          config.Getenv("DEPLOYMENT_ENV", strings.TrimSpace(cfg.Environment)),
		Version:              config.Getenv("SERVICE_VERSION", strings.TrimSpace(cfg.AppVersion)),
		LogLevel:             strings.ToLower(config.Getenv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(config.Getenv("LOG_FORMAT", "json")),
		OtelEnabled:          config.GetenvBool("OTEL_ENABLED", endpoint != ""),
		OtelExporterEndpoint: endpoint,
		OtelExporterProtocol: strings.ToLower(protocol),
		OtelSamplingRatio:    clampRatio(config.GetenvFloat("OTEL_SAMPLING_RATIO", 0.1)),
	}
}

// Debug is on for debug logging or any non-production environment name
// used on a workstation.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}
