package http

import (
	"log/slog"
)

const (
	serviceName = "Assurance-Service"
)

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}
