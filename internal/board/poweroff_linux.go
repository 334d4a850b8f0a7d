//go:build linux

package board

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"
)

// SyscallPowerOff powers the machine off with reboot(2).
type SyscallPowerOff struct {
	// DryRun logs instead of powering off.
	DryRun bool
}

// PowerOff flushes filesystems and cuts power. It only returns on error
// or in dry-run mode.
func (p SyscallPowerOff) PowerOff() error {
	if p.DryRun {
		log.Printf("board: dry run, not powering off")
		return nil
	}
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF); err != nil {
		return fmt.Errorf("reboot(POWER_OFF): %w", err)
	}
	return nil
}
