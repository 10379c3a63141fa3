package app

import (
	"log/slog"
)

type closer struct {
	name string
	fn   func() error
}

// teardown collects the components NewApp has opened so far.
type teardown []closer

func (t *teardown) add(name string, fn func() error) {
	*t = append(*t, closer{name: name, fn: fn})
}

// run closes everything in reverse order of add and logs failures.
func (t teardown) run(logger *slog.Logger) {
	for i := len(t) - 1; i >= 0; i-- {
		if err := t[i].fn(); err != nil {
			logger.Error("cleanup after failed start",
				slog.String("component", t[i].name),
				slog.String("error", err.Error()),
			)
		}
	}
}
