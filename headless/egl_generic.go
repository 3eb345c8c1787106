//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/goquad/graphics"
)

// Context is unavailable off Linux; New always fails.
type Context struct{ graphics.Context }

func New(width, height int) (*Context, error) {
	return nil, fmt.Errorf("headless EGL rendering is not supported on this platform")
}
