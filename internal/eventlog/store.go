// Package eventlog keeps a local history of shipit invocations.
package eventlog

import "time"

// Entry is one recorded invocation.
type Entry struct {
	ID         int64
	Time       time.Time
	Repo       string
	Branch     string
	Tag        string
	RunID      int64  // 0 when no run was watched
	Outcome    string // success | failure | timeout | none | interrupted
	Conclusion string
	Elapsed    time.Duration
	ExitCode   int
}

// Store abstracts history storage.
type Store interface {
	Record(e Entry) error
	Entries(limit int) ([]Entry, error) // newest first, 0 = all
	Clean(days int) (int, error)        // remove entries older than days, return removed count
	Clear() error
	Path() string
	Close() error
}

// DayCutoff returns local midnight at the start of the oldest day kept
// when retaining the last days days (today counts as one).
func DayCutoff(days int) time.Time {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -(days - 1))
}
