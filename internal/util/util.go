//go:build !windows

package util

func IsRunFromGUI() bool {
	// Only Windows users tend to launch the bridge by double-click;
	// on other platforms assume a terminal (or a service manager).
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
