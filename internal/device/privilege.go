package device

import (
	"fmt"
	"syscall"

	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/logger"
)

// DropPrivileges drops the process's saved and effective UID/GID down to
// the real UID/GID once every candidate device has been opened. This must
// run before any further work; if it fails, startup must fail rather than
// continue running elevated.
//
// Unlike this codebase's other privileged helper (which escalates on
// demand via sudo to reach /dev/uinput), Device Source only ever needs
// elevation transiently, to open already-enumerated device nodes, so it
// escalates implicitly (via setuid-root or a file capability set up ahead
// of time) and actively gives the privilege back up immediately after.
func DropPrivileges() error {
	realUID := syscall.Getuid()
	realGID := syscall.Getgid()
	effUID := syscall.Geteuid()

	if effUID == realUID && syscall.Getegid() == realGID {
		logger.Debug("no privilege drop needed, effective uid/gid already match real uid/gid")
		return nil
	}

	if err := syscall.Setresgid(realGID, realGID, realGID); err != nil {
		return fmt.Errorf("drop group privileges: %w", errJoin(err))
	}
	if err := syscall.Setresuid(realUID, realUID, realUID); err != nil {
		return fmt.Errorf("drop user privileges: %w", errJoin(err))
	}

	if syscall.Geteuid() != realUID || syscall.Getuid() != realUID {
		return fmt.Errorf("privilege drop verification failed: euid=%d uid=%d want=%d: %w",
			syscall.Geteuid(), syscall.Getuid(), realUID, errkind.ErrPermission)
	}

	logger.Infof("dropped privileges to uid=%d gid=%d", realUID, realGID)
	return nil
}

func errJoin(err error) error {
	return fmt.Errorf("%w: %w", errkind.ErrPermission, err)
}

// RemediationText is printed when the process cannot open any device due
// to insufficient privilege, explaining the three supported setup paths.
const RemediationText = `keyviz could not open any keyboard device.

This process needs read access to the kernel's raw input devices. Pick one:
  1. Add your user to the "input" group and re-login:
       sudo usermod -aG input $USER
  2. Grant the binary a file capability instead of running it as root:
       sudo setcap cap_dac_override=eip /path/to/keyviz
  3. Install it setuid-root (it drops privileges immediately after opening
     devices, before doing any other work):
       sudo chown root:root /path/to/keyviz && sudo chmod u+s /path/to/keyviz
`
