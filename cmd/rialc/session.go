package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"rial/internal/driver"
	"rial/internal/prof"
	"rial/internal/trace"
)

// session holds what the persistent flags started for one invocation.
type session struct {
	tracer  trace.Tracer
	profile *prof.Session
	once    sync.Once
}

var current *session

func startSession(cmd *cobra.Command) error {
	tracer, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	profile, err := setupProfiling(cmd)
	if err != nil {
		closeTracer(cmd.ErrOrStderr(), tracer)
		return err
	}
	current = &session{tracer: tracer, profile: profile}
	return nil
}

// stopSession flushes the tracer and writes pending profiles. Safe to call
// more than once.
func stopSession(cmd *cobra.Command) {
	s := current
	if s == nil {
		return
	}
	s.once.Do(func() {
		if err := s.profile.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "prof: %v\n", err)
		}
		closeTracer(cmd.ErrOrStderr(), s.tracer)
	})
}

func closeTracer(w io.Writer, t trace.Tracer) {
	if t == nil {
		return
	}
	if err := t.Flush(); err != nil {
		fmt.Fprintf(w, "trace: flush error: %v\n", err)
	}
	if err := t.Close(); err != nil {
		fmt.Fprintf(w, "trace: close error: %v\n", err)
	}
}

// reportInternal prints the stack of an internal compiler error and the
// events the ring tracer kept before it.
func reportInternal(w io.Writer, err error) bool {
	var ice *driver.InternalError
	if !errors.As(err, &ice) {
		return false
	}
	fmt.Fprintf(w, "rialc: %v\n\n%s\n", ice, ice.Stack)
	if current != nil && current.tracer != nil {
		fmt.Fprintln(w, "last trace events:")
		if dumpErr := trace.DumpRing(current.tracer, w); dumpErr != nil {
			fmt.Fprintf(w, "trace: dump error: %v\n", dumpErr)
		}
	}
	return true
}
