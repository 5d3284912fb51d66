package placer

import "github.com/pkg/errors"

// Config tunes the placer. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// UseWindow restricts every matching row to its WindowSize cheapest
	// candidates before solving.
	UseWindow  bool `yaml:"use_window"`
	WindowSize int  `yaml:"window_size"`

	// DynamicPlacement lets resting qubits take any free storage site. When
	// false every qubit always rests at its initial site.
	DynamicPlacement bool `yaml:"dynamic_placement"`

	ReverseInitialPlacement bool `yaml:"reverse_initial_placement"`

	// AtomTransferCost scales moves between a storage and an entanglement
	// site.
	AtomTransferCost float64 `yaml:"atom_transfer_cost"`
}

func DefaultConfig() Config {
	return Config{
		UseWindow:        true,
		WindowSize:       10,
		DynamicPlacement: true,
		AtomTransferCost: 0.9999,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.UseWindow && c.WindowSize <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "window_size must be positive when use_window is set, got %d", c.WindowSize)
	}
	if !(c.AtomTransferCost > 0 && c.AtomTransferCost <= 1) {
		return errors.Wrapf(ErrInvalidArgument, "atom_transfer_cost must be in (0, 1], got %v", c.AtomTransferCost)
	}
	return nil
}
