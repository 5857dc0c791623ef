package clipboard

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
)

// FeedbackDuration is how long a "copied" indicator stays visible
const FeedbackDuration = 900 * time.Millisecond

// writeAll is swapped out in tests
var writeAll = clipboard.WriteAll

// unsupported reports whether no clipboard utility was found
var unsupported = func() bool { return clipboard.Unsupported }

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a new ClipboardError with helpful installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard utility found. " + GetInstallInstructions(),
	}
}

// Copy copies text to the system clipboard
func Copy(text string) error {
	if unsupported() {
		return NewClipboardError()
	}
	return writeAll(text)
}

// CopyWithFallback attempts to copy to clipboard and returns a message
func CopyWithFallback(text string) (string, error) {
	err := Copy(text)
	if err != nil {
		var clipErr *ClipboardError
		if errors.As(err, &clipErr) {
			return "", err
		}
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return "Copied to clipboard!", nil
}

// IsClipboardAvailable checks if clipboard functionality is available
func IsClipboardAvailable() bool {
	return !unsupported()
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
