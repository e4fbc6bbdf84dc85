package checkpoint

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"
)

// pebbleLogger routes the store's internal messages to slog.
// Informational messages (WAL replay, compactions) are debug level.
type pebbleLogger struct {
	logger *slog.Logger
}

var _ pebble.Logger = pebbleLogger{}

func (pl pebbleLogger) Infof(format string, args ...any) {
	pl.logger.Debug(fmt.Sprintf(format, args...),
		"component", "pebble")
}

// Fatalf logs and panics; pebble does not expect it to return.
func (pl pebbleLogger) Fatalf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	pl.logger.Error(message, "component", "pebble")
	panic(fmt.Errorf("checkpoint store: %s", message))
}
