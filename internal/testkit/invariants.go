package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"rial/internal/driver"
	"rial/internal/source"
	"rial/internal/verify"
)

// CheckResultInvariants runs a minimal set of invariants on a compilation:
// 1) every live unit has a module that passes the verifier
// 2) every diagnostic points at a file of the compilation
// 3) a failed unit left at least one error behind
func CheckResultInvariants(res *driver.Result) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	files, err := safecast.Conv[source.FileID](res.FileSet.Len())
	if err != nil {
		return fmt.Errorf("file count overflow: %w", err)
	}

	// 1) live units are lowered and well-formed
	for _, u := range res.Units {
		if u.Failed {
			continue
		}
		if u.Module == nil {
			return fmt.Errorf("unit %s: live but not lowered", u.Name())
		}
		if err := verify.Module(u.Module); err != nil {
			return fmt.Errorf("unit %s: %w", u.Name(), err)
		}
	}

	// 2) diagnostics point into the file set
	for _, d := range res.Bag.Items() {
		if files > 0 && d.Primary.File >= files {
			return fmt.Errorf("%s: file %d out of range (%d files)", d.Code.ID(), d.Primary.File, files)
		}
	}

	// 3) failures are explained
	for _, u := range res.Units {
		if u.Failed && !res.Bag.HasErrors() {
			return fmt.Errorf("unit %s failed without an error diagnostic", u.Name())
		}
	}
	return nil
}
