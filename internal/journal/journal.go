package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ALEYI17/InfraSight_arena/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"
)

// Journal appends burst results as JSON lines. Writers in other processes
// are serialized through an exclusive lock on <path>.lock.
type Journal struct {
	path string
	lock *flock.Flock
}

func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Journal{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Append(r types.BurstResult) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("journal: encoding result: %w", err)
	}
	line = append(line, '\n')

	if err := j.lock.Lock(); err != nil {
		return fmt.Errorf("journal: locking: %w", err)
	}
	defer j.lock.Unlock()

	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: opening %s: %w", j.path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("journal: writing: %w", err)
	}
	return f.Close()
}

// Close releases the lock file handle.
func (j *Journal) Close() error {
	return j.lock.Close()
}

// Report is the result of reading a journal back.
type Report struct {
	Summary aggregator.Summary
	Skipped int
}

// Summarize reads every entry of the journal at path and aggregates the
// deltas. Lines that are not valid entries are counted in Skipped.
func Summarize(path string, toleranceKiB int64) (Report, error) {
	var rep Report

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return rep, fmt.Errorf("journal: locking: %w", err)
	}
	defer lock.Close()

	f, err := os.Open(path)
	if err != nil {
		return rep, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	defer f.Close()

	ta := aggregator.NewTrialAggregator(toleranceKiB)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		r, ok := decode(line)
		if !ok {
			rep.Skipped++
			continue
		}
		ta.Update(r)
	}
	if err := scanner.Err(); err != nil {
		return rep, fmt.Errorf("journal: reading %s: %w", path, err)
	}

	rep.Summary = ta.Flush()
	return rep, nil
}

func decode(line []byte) (types.BurstResult, bool) {
	if !gjson.ValidBytes(line) {
		return types.BurstResult{}, false
	}
	res := gjson.GetManyBytes(line, "initial_rss_kib", "final_rss_kib", "thread_count", "failed", "elapsed_ns", "timestamp")
	if !res[0].Exists() || !res[1].Exists() {
		return types.BurstResult{}, false
	}

	r := types.NewBurstResult(res[0].Uint(), res[1].Uint(), int(res[2].Int()), time.Duration(res[4].Int()))
	r.Failed = int(res[3].Int())
	r.Timestamp = res[5].Time()
	return r, true
}
