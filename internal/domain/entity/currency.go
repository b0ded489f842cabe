package entity

import (
	"errors"
)

// Currency represents one row of the currency registry
type Currency struct {
	Symbol  string
	Fetch   bool
	Country string
}

// Validate ensures the registry entry is usable
func (c *Currency) Validate() error {
	if c.Symbol == "" {
		return errors.New("currency symbol must not be empty")
	}

	return nil
}
