package pipeline

import "time"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Emit sends evt to sink when sink is non-nil.
func Emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// StageAll reports a stage transition for every unit and returns a function
// that reports its completion with the elapsed time.
func StageAll(sink ProgressSink, units []string, stage Stage) func(err error) {
	if sink == nil {
		return func(error) {}
	}
	start := time.Now()
	for _, u := range units {
		sink.OnEvent(Event{Unit: u, Stage: stage, Status: StatusWorking})
	}
	sink.OnEvent(Event{Stage: stage, Status: StatusWorking})
	return func(err error) {
		status := StatusDone
		if err != nil {
			status = StatusError
		}
		sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
	}
}
