package observ

import (
	"strings"
	"sync"
	"testing"

	"github.com/nalgeon/be"
)

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("lower")
	var wg sync.WaitGroup
	for _, name := range []string{"unit:a", "unit:b", "unit:c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track(name)("")
		}()
	}
	wg.Wait()
	done("3 units")

	report := tm.Report()
	be.Equal(t, len(report.Phases), 4)
	be.Equal(t, report.Phases[0].Note, "3 units")
	be.True(t, report.TotalMS >= report.Phases[0].DurationMS)
	be.True(t, strings.Contains(tm.Summary(), "// 3 units"))
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	be.Equal(t, len(tm.Report().Phases), 0)
}
