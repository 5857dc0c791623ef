package clipboard

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func stub(t *testing.T, missing bool, write func(string) error) {
	t.Helper()
	origWrite, origUnsupported := writeAll, unsupported
	writeAll = write
	unsupported = func() bool { return missing }
	t.Cleanup(func() {
		writeAll, unsupported = origWrite, origUnsupported
	})
}

func TestClipboardError(t *testing.T) {
	err := NewClipboardError()

	if err.OS != runtime.GOOS {
		t.Errorf("Expected OS to be %s, got %s", runtime.GOOS, err.OS)
	}

	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}
}

func TestCopyWithFallback(t *testing.T) {
	var got string
	stub(t, false, func(s string) error {
		got = s
		return nil
	})

	statusMsg, err := CopyWithFallback("test clipboard content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusMsg != "Copied to clipboard!" {
		t.Errorf("Expected 'Copied to clipboard!', got '%s'", statusMsg)
	}
	if got != "test clipboard content" {
		t.Errorf("clipboard received %q", got)
	}
}

func TestCopyWithoutUtility(t *testing.T) {
	stub(t, true, func(string) error {
		t.Fatal("writer must not run without a clipboard utility")
		return nil
	})

	_, err := CopyWithFallback("x")
	var clipErr *ClipboardError
	if !errors.As(err, &clipErr) {
		t.Fatalf("expected ClipboardError, got %v", err)
	}
	if IsClipboardAvailable() {
		t.Error("clipboard should be reported unavailable")
	}
}

func TestCopyWrapsWriteFailure(t *testing.T) {
	stub(t, false, func(string) error { return errors.New("exit status 1") })

	_, err := CopyWithFallback("x")
	if err == nil || !strings.Contains(err.Error(), "failed to copy to clipboard") {
		t.Errorf("Non-clipboard errors should be wrapped: %v", err)
	}
}

func TestGetInstallInstructions(t *testing.T) {
	instructions := GetInstallInstructions()

	if instructions == "" {
		t.Error("Install instructions should not be empty")
	}
	if runtime.GOOS == "linux" && !strings.Contains(instructions, "xclip") {
		t.Error("Linux instructions should mention xclip")
	}
}

func TestFeedbackDuration(t *testing.T) {
	if FeedbackDuration.Seconds() >= 2 {
		t.Errorf("feedback should expire in under two seconds, got %s", FeedbackDuration)
	}
}
