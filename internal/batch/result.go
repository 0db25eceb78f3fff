package batch

import "time"

// Status is the outcome of one file in a batch.
type Status string

const (
	// StatusCompleted indicates the tool exited with status zero.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the file could not be normalized.
	StatusFailed Status = "FAILED"
)

// Result describes what happened to a single input file.
type Result struct {
	// Input is the source audio file.
	Input string
	// Output is the normalized file the tool was asked to write.
	Output string
	// Status is the outcome.
	Status Status
	// Err is the cause of a failure.
	Err error
	// Size is the byte size of Output after a successful run.
	Size int64
	// Elapsed is how long the tool ran.
	Elapsed time.Duration
	// URL is where Output was published, if publishing is enabled.
	URL string
}

// Summary collects the results of one batch run in processing order.
type Summary struct {
	RunID   string
	Results []Result
}

// Succeeded returns the number of files normalized successfully.
func (s *Summary) Succeeded() int {
	return s.count(StatusCompleted)
}

// Failed returns the number of files that failed.
func (s *Summary) Failed() int {
	return s.count(StatusFailed)
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
