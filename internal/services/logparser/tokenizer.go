// Package logparser turns raw log lines into fields and classifies error messages.
package logparser

import "regexp"

// linePattern matches
//
//	<timestamp> <LEVEL> <pid> --- [<thread>] [<logger>] <source> : <message>
//
// Thread and logger spans are consumed but not captured.
var linePattern = regexp.MustCompile(`^(\S+)\s+(INFO|WARN|ERROR|DEBUG)\s+\d+\s+---\s+\[.*?\]\s+\[.*?\]\s+(\S+)\s+:\s+(.*)$`)

// LineFields are the parts of a structured log line kept by the pipeline.
// Timestamp is the raw token; it is not validated here.
type LineFields struct {
	Timestamp string
	Level     string
	Source    string
	Message   string
}

// Tokenize matches line against the log grammar.
// The second return is false for lines that are not structured entries
// (stack frames, continuation lines, blanks); callers skip those.
func Tokenize(line string) (LineFields, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return LineFields{}, false
	}
	return LineFields{
		Timestamp: m[1],
		Level:     m[2],
		Source:    m[3],
		Message:   m[4],
	}, true
}
