package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger returns the handler and logger a component logs through. A nil handler
// is replaced by a text handler on stdout grouped under the component name, and a
// warning is logged once. groupName, when set, nests the logger one group deeper.
func SetupLogger(handler slog.Handler, component string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, nil).WithGroup(component)
		slog.New(handler).Warn("Handler is nil, using the default logger configuration.")
	}

	if groupName != "" {
		return handler, slog.New(handler.WithGroup(groupName))
	}
	return handler, slog.New(handler)
}
