// Package logger provides a structured logging interface for the monthly
// post counter.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - An append-only file sink that doubles as the run log
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "igmonthly/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level:   "info",
//	    File:    "app.log",
//	    Console: true,
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Completed processing for alice.")
//	logger.WithField("username", "alice").Debug("Session restored")
//	logger.WithError(err).Error("Login failed")
//
// The file sink is where the end-of-run export looks for "Completed" and
// "Error" lines, so progress messages are logged with their full text
// rather than split into fields.
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to the run log file (empty for no file sink)
// - Console: Whether to write the pretty terminal output
package logger
