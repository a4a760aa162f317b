package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives a relay through one GPIO line.
type RealDriver struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealDriver requests the given line as an output, initially off. The
// relay board is wired normally open, so low means off.
func NewRealDriver(chip string, pin int) (*RealDriver, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d on %s: %w", pin, chip, err)
	}
	return &RealDriver{line: line, pin: pin}, nil
}

// Set drives the output.
func (d *RealDriver) Set(on bool) error {
	value := 0
	if on {
		value = 1
	}
	if err := d.line.SetValue(value); err != nil {
		return fmt.Errorf("set relay pin %d: %w", d.pin, err)
	}
	return nil
}

// Close drops the output low and releases the line.
func (d *RealDriver) Close() error {
	if d.line == nil {
		return nil
	}
	d.line.SetValue(0)
	if err := d.line.Close(); err != nil {
		return fmt.Errorf("close relay pin %d: %w", d.pin, err)
	}
	return nil
}
