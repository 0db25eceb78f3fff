// Package id provides unique identifier generation for batch runs.
package id

import "github.com/oklog/ulid/v2"

// Generate creates a new unique run ID.
// Format: run-<ULID>
// Example: run-01HF3Z8J6Q9V7Y2K4M5N6P7R8S
//
// IDs sort by creation time, so uploaded results group chronologically.
func Generate() string {
	return "run-" + ulid.Make().String()
}
