package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/nalgeon/be"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	oldV, oldC, oldD, oldNo := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate, color.NoColor = v, commit, date, true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = oldV, oldC, oldD, oldNo
	})
}

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{name: "dev", version: "0.1.0-dev", want: "rialc 0.1.0-dev"},
		{name: "commit", version: "1.2.3", commit: "1234567890abcdef", want: "rialc 1.2.3 (1234567890ab)"},
		{name: "date", version: "1.2.3+build.7", date: "2026-01-15", want: "rialc 1.2.3+build.7 built 2026-01-15"},
		{name: "not semver", version: "nightly", want: "rialc nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, tt.commit, tt.date)
			be.Equal(t, String(), tt.want)
		})
	}
}
