package source

import (
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ChronySource reads the selected time source and its statistics from
// chronyc's CSV output.
type ChronySource struct {
	log zerolog.Logger

	// run executes a command and returns its stdout. Injectable for
	// tests.
	run func(name string, arg ...string) ([]byte, error)

	mu        sync.Mutex
	sourceID  string
	offset    string
	deviation string
}

// NewChronySource creates a TimeSync backed by the chronyc binary.
func NewChronySource(log zerolog.Logger) *ChronySource {
	return &ChronySource{
		log: log.With().Str("component", "chrony").Logger(),
		run: func(name string, arg ...string) ([]byte, error) {
			return exec.Command(name, arg...).Output()
		},
	}
}

// Update refreshes the source id, offset and deviation. On any failure the
// previous values are retained.
func (c *ChronySource) Update() {
	tracking, err := c.run("chronyc", "-c", "tracking")
	if err != nil {
		c.log.Debug().Err(err).Msg("chronyc tracking failed")
		return
	}

	id, ok := parseTracking(string(tracking))
	if !ok {
		c.log.Debug().Msg("unparseable chronyc tracking output")
		return
	}

	offset, deviation := "", ""
	if id != "" {
		stats, err := c.run("chronyc", "-c", "sourcestats")
		if err != nil {
			c.log.Debug().Err(err).Msg("chronyc sourcestats failed")
			return
		}
		offset, deviation = parseSourceStats(string(stats), id)
	}

	c.mu.Lock()
	c.sourceID = id
	c.offset = offset
	c.deviation = deviation
	c.mu.Unlock()
}

// SourceID returns the currently selected time source.
func (c *ChronySource) SourceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceID
}

// Offset returns the formatted source offset.
func (c *ChronySource) Offset() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FormatSeconds(c.offset)
}

// Deviation returns the formatted offset standard deviation.
func (c *ChronySource) Deviation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FormatSeconds(c.deviation)
}

// parseTracking extracts the reference source name from `chronyc -c
// tracking` output (the second CSV field).
func parseTracking(out string) (string, bool) {
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// parseSourceStats finds the line for the given source in `chronyc -c
// sourcestats` output and returns its offset and deviation fields.
func parseSourceStats(out, sourceID string) (offset, deviation string) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ",")
		if len(fields) >= 8 && fields[0] == sourceID {
			return fields[6], fields[7]
		}
	}
	return "", ""
}

// FormatSeconds renders a decimal seconds value in engineering notation:
// one to three significant digits plus a s/ms/us/ns unit. Values of a
// second or more that do not land on an exact power come out as "large",
// values below a nanosecond as the empty string, matching what fits in the
// status box on the panel.
func FormatSeconds(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ""
	}
	if f == 0 {
		return "0s"
	}

	// Shortest scientific form gives us the significant digits and the
	// exponent of the leading digit.
	sci := strconv.FormatFloat(math.Abs(f), 'e', -1, 64)
	mant, expStr, ok := strings.Cut(sci, "e")
	if !ok {
		return ""
	}
	exp, err := strconv.Atoi(expStr)
	if err != nil {
		return ""
	}
	digits := strings.Replace(mant, ".", "", 1)

	// Shift down to the nearest power-of-1000 boundary, widening the
	// displayed digits accordingly.
	n := 1
	for i := 0; i < 2 && exp%3 != 0; i++ {
		exp--
		n++
	}
	for len(digits) < n {
		digits += "0"
	}
	value := digits[:n]

	switch {
	case exp == 0:
		return value + "s"
	case exp == -3:
		return value + "ms"
	case exp == -6:
		return value + "us"
	case exp == -9:
		return value + "ns"
	case exp > 0:
		return "large"
	default:
		return ""
	}
}
