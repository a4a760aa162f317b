package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/autogarden/thermctl/internal/climate"
)

const w1Dir = "/sys/bus/w1/devices"

// RealReader reads a DS18B20 probe through the kernel 1-wire driver.
type RealReader struct {
	path   string
	window Window
	now    func() time.Time
}

// NewRealReader creates a reader for the given 1-wire device id (for
// example "28-00000a1b2c3d"). An empty id picks the first DS18B20 on the
// bus.
func NewRealReader(deviceID string, window Window) (*RealReader, error) {
	if deviceID == "" {
		matches, err := filepath.Glob(filepath.Join(w1Dir, "28-*"))
		if err != nil || len(matches) == 0 {
			return nil, fmt.Errorf("no DS18B20 device found under %s", w1Dir)
		}
		deviceID = filepath.Base(matches[0])
	}

	path := filepath.Join(w1Dir, deviceID, "w1_slave")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sensor device %s: %w", deviceID, err)
	}

	return &RealReader{path: path, window: window, now: time.Now}, nil
}

// Read parses one w1_slave report. The driver emits two lines:
//
//	5f 01 4b 46 7f ff 0c 10 a0 : crc=a0 YES
//	5f 01 4b 46 7f ff 0c 10 a0 t=21937
//
// A failed CRC or a missing t= field yields an invalid reading.
func (r *RealReader) Read() climate.Reading {
	now := r.now()
	data, err := os.ReadFile(r.path)
	if err != nil {
		return r.window.Check(0, err, now)
	}

	text := string(data)
	if !strings.Contains(text, "YES") {
		return r.window.Check(0, fmt.Errorf("crc check failed"), now)
	}

	idx := strings.LastIndex(text, "t=")
	if idx < 0 {
		return r.window.Check(0, fmt.Errorf("no temperature in report"), now)
	}

	raw := strings.TrimSpace(text[idx+2:])
	milli, err := strconv.Atoi(raw)
	if err != nil {
		return r.window.Check(0, fmt.Errorf("parse temperature %q: %w", raw, err), now)
	}

	return r.window.Check(float64(milli)/1000.0, nil, now)
}

// Close releases sensor resources. The sysfs reader holds none.
func (r *RealReader) Close() error {
	return nil
}
