//go:build linux

package button

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealEdgeSource watches button lines on actual hardware using the Linux
// GPIO character device.
type RealEdgeSource struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealEdgeSource opens the given GPIO chip (e.g. "gpiochip0").
func NewRealEdgeSource(chipName string) (*RealEdgeSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealEdgeSource{chip: chip}, nil
}

// Watch requests the line as a pulled-up input and subscribes to both
// edges. A falling edge means the button was pressed.
func (s *RealEdgeSource) Watch(offset int, fn func(pressed bool)) error {
	line, err := s.chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			fn(evt.Type == gpiocdev.LineEventFallingEdge)
		}))
	if err != nil {
		return fmt.Errorf("request line %d: %w", offset, err)
	}
	s.lines = append(s.lines, line)
	return nil
}

// Close releases all requested lines and the chip.
func (s *RealEdgeSource) Close() error {
	var errs []error
	for _, line := range s.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	s.lines = nil
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
