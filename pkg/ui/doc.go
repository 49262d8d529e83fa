// Package ui provides the terminal rendering layer: ANSI color helpers,
// the batch progress display with its summary table, and cross-platform
// desktop notifications. The bubbletea alternative lives in ui/tui; both
// satisfy the Renderer interface consumed by the command layer.
package ui
