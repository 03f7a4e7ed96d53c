package diag

// Severity orders diagnostics; a larger value is more severe.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError makes the compilation fail.
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}
