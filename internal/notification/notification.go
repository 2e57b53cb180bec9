package notification

import (
	"context"
	"log/slog"
)

const (
	// KindDeposit announces funds arriving at a custodial address.
	KindDeposit = "deposit"
	// KindWithdrawal announces funds leaving to a recipient.
	KindWithdrawal = "withdrawal"
)

// Message describes a custody event to announce downstream.
type Message struct {
	Kind          string
	Destination   string
	CurrencyID    string
	Amount        string
	Status        string
	TransactionID string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send implements Notifier.
func (n *LoggerNotifier) Send(ctx context.Context, m Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "custody notification",
		slog.String("kind", m.Kind),
		slog.String("destination", m.Destination),
		slog.String("currency", m.CurrencyID),
		slog.String("amount", m.Amount),
		slog.String("status", m.Status),
		slog.String("tid", m.TransactionID),
	)
	return nil
}
