// Package logging builds the process-wide zap logger.
package logging

import "go.uber.org/zap"

// New returns a development or production logger. The production
// variant emits JSON and skips per-entry stack traces; request paths
// carry enough context on their own.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
