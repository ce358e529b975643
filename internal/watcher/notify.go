package watcher

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Notify sends a desktop notification for the given alert. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it
// writes the alert to fallback.
func Notify(alert Alert, fallback io.Writer) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(
			`display notification %q with title "catalyst" subtitle %q`,
			alert.Message, alert.Title,
		)
		if err := exec.Command("osascript", "-e", script).Run(); err == nil {
			return nil
		}
	case "linux":
		if _, err := exec.LookPath("notify-send"); err == nil {
			title := fmt.Sprintf("catalyst: %s", alert.Title)
			if err := exec.Command("notify-send", title, alert.Message).Run(); err == nil {
				return nil
			}
		}
	}
	return writeAlert(fallback, alert)
}

func writeAlert(w io.Writer, alert Alert) error {
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
