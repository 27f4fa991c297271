package led

// Controller drives a board status LED.
// Implementations map logical LED names to the board's hardware names.
type Controller interface {
	// Set switches the named LED on or off.
	Set(name string, on bool) error

	// Available returns the LED names this board exposes.
	Available() []string
}
