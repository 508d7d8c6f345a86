/*
Package store moves CSV feeds in and out of the object store. Each stage reads
the newest CSV under an input prefix and writes its output and periodic
checkpoints back under stage-specific prefixes. A local filesystem
implementation backs LOCAL_MODE runs.
*/
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store is what the pipeline stages need from a feed location: pick up the
// newest CSV under a prefix and put named objects back.
type Store interface {
	// LatestCSV returns the base name and contents of the newest CSV under
	// prefix, newest meaning the later of creation and last-update time.
	LatestCSV(ctx context.Context, prefix string) (string, []byte, error)
	// Put writes data to name under prefix, overwriting any existing object.
	Put(ctx context.Context, prefix, name string, data []byte) error
}

// DeriveOutputName maps an input feed filename to the stage's output filename
// by prefix substitution (input_x.csv becomes text_output_x.csv), so a run's
// artifacts are greppable by the feed they came from. Inputs that don't carry
// the expected prefix get a timestamped name instead.
func DeriveOutputName(inputName, fromPrefix, toPrefix string, now time.Time) string {
	if inputName != "" && strings.HasPrefix(inputName, fromPrefix) {
		return strings.Replace(inputName, fromPrefix, toPrefix, 1)
	}
	return fmt.Sprintf("%s%s.csv", toPrefix, now.Format("20060102_150405"))
}

// CheckpointName builds the periodic snapshot filename:
// <base>_<NNN>_<timestamp>.csv, where base is the input name with its stage
// prefix swapped for the checkpoint prefix.
func CheckpointName(inputName, fromPrefix, toPrefix string, n int, now time.Time) string {
	base := fmt.Sprintf("%s%s", toPrefix, now.Format("20060102"))
	if inputName != "" && strings.HasPrefix(inputName, fromPrefix) {
		base = strings.TrimSuffix(strings.Replace(inputName, fromPrefix, toPrefix, 1), ".csv")
	}
	return fmt.Sprintf("%s_%03d_%s.csv", base, n, now.Format("20060102_150405"))
}
