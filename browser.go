package graw

import (
	"os/exec"
	"runtime"
)

// BrowserOpener presents an authorization URL to the user.
type BrowserOpener interface {
	Open(url string) error
}

// BrowserFunc adapts a function to BrowserOpener.
type BrowserFunc func(url string) error

// Open calls f(url).
func (f BrowserFunc) Open(url string) error {
	return f(url)
}

// SystemBrowser opens URLs with the platform's default handler.
type SystemBrowser struct{}

// Open starts the platform opener and does not wait for it to exit.
func (SystemBrowser) Open(url string) error {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"open"}
	case "windows":
		args = []string{"cmd", "/c", "start"}
	default:
		args = []string{"xdg-open"}
	}
	cmd := exec.Command(args[0], append(args[1:], url)...)
	return cmd.Start()
}
