// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/forgeflow/forgeflow/pkg/registry"
)

// NewRegistry returns a registry holding every built-in node. HTTP nodes time out after httpTimeout.
func NewRegistry(logger *slog.Logger, httpTimeout time.Duration) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)

	var client *http.Client
	if httpTimeout > 0 {
		client = &http.Client{Timeout: httpTimeout}
	}

	if err := reg.RegisterBuiltins(client); err != nil {
		return nil, err
	}

	return reg, nil
}
