package spawn

import "testing"

func TestShellRunsAndDetaches(t *testing.T) {
	if err := Shell("true"); err != nil {
		t.Fatal(err)
	}
}

func TestInitRejectsMissingExecutable(t *testing.T) {
	if err := Init("/nonexistent/river-init-does-not-exist", nil); err == nil {
		t.Fatal("expected an error for a missing init executable")
	}
}
