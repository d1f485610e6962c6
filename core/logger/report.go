package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// LogEntry is one decoded event.
type LogEntry struct {
	Timestamp string   `json:"ts"`
	Msg       string   `json:"msg"`
	SessionID string   `json:"session_id"`
	Dir       string   `json:"dir,omitempty"`
	Command   []string `json:"command,omitempty"`
	Builtin   bool     `json:"builtin,omitempty"`
	Path      string   `json:"path,omitempty"`
	Status    int      `json:"status"`
	Line      string   `json:"line,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report summarizes an event log.
type Report struct {
	LogEntries   int         `json:"log_entries"`
	Sessions     int         `json:"sessions"`
	SyntaxErrors int         `json:"syntax_errors"`
	Builtins     *StrCounter `json:"builtins"`
	Programs     *StrCounter `json:"programs"`
	NotFound     *StrCounter `json:"not_found"`
	ExitStatuses *StrCounter `json:"exit_statuses"`
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if r.Builtins == nil {
		r.Builtins, r.Programs, r.NotFound, r.ExitStatuses = &StrCounter{}, &StrCounter{}, &StrCounter{}, &StrCounter{}
	}

	switch le.Msg {
	case MsgSessionStart:
		r.Sessions++
	case MsgSyntaxError:
		r.SyntaxErrors++
	case MsgSessionEnd:
		r.ExitStatuses.Increment(fmt.Sprintf("%d", le.Status))
	case MsgDispatch:
		if len(le.Command) == 0 {
			return
		}
		switch {
		case le.Builtin:
			r.Builtins.Increment(le.Command[0])
		case le.Path == "":
			r.NotFound.Increment(le.Command[0])
		default:
			r.Programs.Increment(le.Path)
		}
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Keys returns the keys seen, most frequent first.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if s.internal[out[i]] == s.internal[out[j]] {
			return out[i] < out[j]
		}
		return s.internal[out[i]] > s.internal[out[j]]
	})
	return out
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}
