package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// readColorMode resolves --color and applies it to fatih/color globally.
func readColorMode(value string) (bool, error) {
	var on bool
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		on = isTerminal(os.Stderr) && !color.NoColor
	case "on", "always":
		on = true
	case "off", "never":
		on = false
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	color.NoColor = !on
	return on, nil
}
