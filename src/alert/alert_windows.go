//go:build windows

package alert

import "golang.org/x/sys/windows"

const (
	mbOK        = 0x00000000
	mbIconError = 0x00000010
)

func show(title, message string) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	if _, err := windows.MessageBox(0, text, caption, mbOK|mbIconError); err != nil {
		Logger.Warn("message box failed", "err", err)
	}
}
