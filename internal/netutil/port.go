// Package netutil picks a listen address for the controller.
package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// ErrNoAddress is returned when neither the preferred address nor any
// candidate can be bound.
var ErrNoAddress = errors.New("no available controller bind addresses")

// Listen binds preferred, or with autoFallback the first free candidate.
// The returned listener is already bound so the address cannot be taken
// between selection and serving.
func Listen(preferred string, candidates []string, autoFallback bool) (net.Listener, error) {
	if preferred != "" {
		ln, err := net.Listen("tcp", preferred)
		if err == nil {
			return ln, nil
		}
		if !autoFallback {
			return nil, fmt.Errorf("preferred bind address in use: %s: %w", preferred, err)
		}
		slog.Warn("preferred bind address unavailable", "addr", preferred, "error", err)
	}

	for _, addr := range candidates {
		if addr == preferred {
			continue
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			slog.Debug("candidate bind address unavailable", "addr", addr, "error", err)
			continue
		}
		return ln, nil
	}
	return nil, ErrNoAddress
}

// IsAddrAvailable returns true when an address can be listened on.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}
