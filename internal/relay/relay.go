// Package relay drives on/off outputs with hardware abstraction. The real
// implementation uses the Linux GPIO character device; the fake records
// commands for tests.
package relay

// Driver commands a single relay output.
type Driver interface {
	// Set drives the output high (on) or low (off).
	Set(on bool) error

	// Close releases the output, leaving it off.
	Close() error
}
