package version

import (
	"strings"
	"testing"
)

func setBuildVars(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, Commit, BuildTime = version, commit, buildTime
}

func TestString(t *testing.T) {
	setBuildVars(t, "1.2.3", "abc1234", "2024-01-15T10:00:00Z")

	expected := "1.2.3 (abc1234) built 2024-01-15T10:00:00Z"
	if got := String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}

func TestUserAgent(t *testing.T) {
	setBuildVars(t, "dev", "unknown", "unknown")

	ua := UserAgent()
	if !strings.HasPrefix(ua, "energy-data-ingestor/dev") {
		t.Errorf("UserAgent() = %q, want prefix %q", ua, "energy-data-ingestor/dev")
	}
	if strings.Contains(ua, " built ") {
		t.Errorf("UserAgent() = %q, should not contain build time", ua)
	}
}
