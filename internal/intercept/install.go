package intercept

import "sync"

// The host program redirects its real request-creation entry points into
// CreateTask on the active point exactly once per process. Mocks are
// deactivated by clearing the registry; the seam itself never comes out.

var (
	installMu sync.Mutex
	active    *Point
)

// Install makes p the process-wide interception point. The first call wins;
// repeated installs are no-ops.
func Install(p *Point) {
	installMu.Lock()
	defer installMu.Unlock()
	if active == nil {
		active = p
		p.log.Info("interception installed")
	}
}

// Installed reports whether the seam has been installed.
func Installed() bool {
	installMu.Lock()
	defer installMu.Unlock()
	return active != nil
}

// Active returns the installed point, or nil.
func Active() *Point {
	installMu.Lock()
	defer installMu.Unlock()
	return active
}

// for tests in this package
func resetInstall() {
	installMu.Lock()
	active = nil
	installMu.Unlock()
}
