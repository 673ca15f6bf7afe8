package display

import "github.com/rs/zerolog"

// LogSink writes draw primitives to the log instead of a panel. It is the
// sink the daemon falls back to when no panel driver is attached, and is
// useful for watching the frame composition on a dev box.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "display").Logger()}
}

func (l *LogSink) Text(s string, font Font, r Region) {
	l.log.Debug().Str("text", s).Int("font", int(font)).
		Ints("region", []int{r.Left, r.Top, r.Right, r.Bottom}).Msg("draw text")
}

func (l *LogSink) Icon(name string, x, y int) {
	l.log.Debug().Str("icon", name).Int("x", x).Int("y", y).Msg("draw icon")
}

func (l *LogSink) Frame(r Region) {
	l.log.Debug().Ints("region", []int{r.Left, r.Top, r.Right, r.Bottom}).Msg("draw frame")
}

func (l *LogSink) Dial(label string, used int, r Region) {
	l.log.Debug().Str("label", label).Int("used", used).Msg("draw dial")
}

func (l *LogSink) Clear() {
	l.log.Debug().Msg("clear")
}

func (l *LogSink) Commit() {
	l.log.Debug().Msg("commit")
}

func (l *LogSink) CommitFull() {
	l.log.Debug().Msg("commit full")
}

func (l *LogSink) RequestFullRefresh() {
	l.log.Debug().Msg("full refresh armed")
}
