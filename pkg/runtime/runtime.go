package runtime

import (
	"fmt"

	"github.com/adrg/xdg"
)

const (
	XDGName = "stickies"
)

// DataFile resolves filename under $XDG_DATA_HOME/stickies, creating the directory.
func DataFile(filename string) (string, error) {
	return xdg.DataFile(fmt.Sprintf("%s/%s", XDGName, filename))
}

// LogFile is where the TUI logs when no logFile is configured.
func LogFile() (string, error) {
	return xdg.StateFile(fmt.Sprintf("%s/%s.log", XDGName, XDGName))
}
