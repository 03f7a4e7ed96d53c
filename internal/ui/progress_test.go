package ui

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"rial/internal/pipeline"
)

func TestApplyEvent(t *testing.T) {
	m := NewProgressModel("build app", []string{"app:main", "app:geo:point"}, nil).(*progressModel)

	m.applyEvent(pipeline.Event{Unit: "app:main", Stage: pipeline.StageLower, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{Unit: "app:geo:point", Stage: pipeline.StageLower, Status: pipeline.StatusError})
	m.applyEvent(pipeline.Event{Stage: pipeline.StageLower, Status: pipeline.StatusWorking})

	be.Equal(t, m.items[0].status, "lowering")
	be.Equal(t, m.items[1].status, "error")
	be.Equal(t, m.stageLabel, "lowering")

	view := m.View()
	be.True(t, strings.Contains(view, "build app (lowering)"))
	be.True(t, strings.Contains(view, "app:geo:point"))
}

func TestPercent(t *testing.T) {
	m := NewProgressModel("x", []string{"a", "b"}, nil).(*progressModel)
	be.Equal(t, m.percent(), 0.0)
	m.applyEvent(pipeline.Event{Unit: "a", Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
	be.Equal(t, m.items[0].status, "done")
	be.Equal(t, m.percent(), 0.5)
}

func TestTruncate(t *testing.T) {
	be.Equal(t, truncate("app:main", 20), "app:main")
	be.Equal(t, truncate("app:very:long:module", 10), "app:ver...")
	be.Equal(t, truncate("приложение", 2), "пр")
}
