package service

import (
	"time"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
)

// Clock supplies the current calendar date so tests can pin it
type Clock interface {
	// Today returns the current date at UTC midnight.
	Today() time.Time
}

// SystemClock reads the operating system clock
type SystemClock struct{}

// Today returns the wall-clock calendar date.
func (SystemClock) Today() time.Time {
	return entity.Day(time.Now())
}
