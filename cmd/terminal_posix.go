//go:build !windows
// +build !windows

package cmd

// HandleTerminalCompatibility is a no-op outside Windows: mintty/winpty
// relaunching is a Windows-only console limitation.
func HandleTerminalCompatibility() {}
