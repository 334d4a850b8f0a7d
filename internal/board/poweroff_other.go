//go:build !linux

package board

import (
	"errors"
	"log"
)

// SyscallPowerOff is only functional on Linux.
type SyscallPowerOff struct {
	DryRun bool
}

// PowerOff returns an error on non-Linux platforms unless DryRun is set.
func (p SyscallPowerOff) PowerOff() error {
	if p.DryRun {
		log.Printf("board: dry run, not powering off")
		return nil
	}
	return errors.New("board: power-off not supported on this platform (requires Linux)")
}
