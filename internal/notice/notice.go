// Package notice provides push.Notifier implementations.
package notice

import (
	"log/slog"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// LogNotifier writes each report as a structured log line.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "PushNotifier")}
}

func (n *LogNotifier) Notice(report push.Report) {
	n.logger.Warn(report.Message(),
		"module", report.Module,
		"service", report.Service,
		"kind", report.Kind.String(),
		"error", report.Reason,
		"status", report.StatusCode,
	)
}

// Multi fans a report out to every notifier in order.
type Multi []push.Notifier

func (m Multi) Notice(report push.Report) {
	for _, n := range m {
		n.Notice(report)
	}
}

// Nop discards reports.
type Nop struct{}

func (Nop) Notice(push.Report) {}
