//go:build !linux

package backend

import (
	"fmt"

	"github.com/rs/zerolog"
)

func newEvdev(zerolog.Logger) (Backend, error) {
	return nil, fmt.Errorf("%w: evdev requires linux", ErrNotAvailable)
}
