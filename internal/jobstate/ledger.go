package jobstate

import (
	"fmt"
	"sort"
	"sync"
)

// Pipeline step names recorded in the ledger.
const (
	StepSplit  = "split"
	StepScore  = "score"
	StepSelect = "select"
	StepConcat = "concat"
)

// Status marks the outcome of one step for one item.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one recorded outcome.
type Entry struct {
	Step   string `json:"step"`
	Key    string `json:"key"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ledger is an append-only record of per-step outcomes for a batch. Each
// (step, key) pair is written at most once; later writes are rejected so a
// retried step cannot rewrite history.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
	seen    map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// RecordOK marks the (step, key) pair as succeeded.
func (l *Ledger) RecordOK(step, key string) error {
	return l.record(Entry{Step: step, Key: key, Status: StatusOK})
}

// RecordFailure marks the (step, key) pair as failed with the given cause.
func (l *Ledger) RecordFailure(step, key string, cause error) error {
	entry := Entry{Step: step, Key: key, Status: StatusFailed}
	if cause != nil {
		entry.Error = cause.Error()
	}
	return l.record(entry)
}

func (l *Ledger) record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := entry.Step + "\x00" + entry.Key
	if _, dup := l.seen[id]; dup {
		return fmt.Errorf("jobstate: duplicate record for step %q key %q", entry.Step, entry.Key)
	}
	l.seen[id] = struct{}{}
	l.entries = append(l.entries, entry)
	return nil
}

// Failed reports whether any entry anywhere in the batch recorded a failure.
func (l *Ledger) Failed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if entry.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Failures returns the failed entries in recording order.
func (l *Ledger) Failures() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var failed []Entry
	for _, entry := range l.entries {
		if entry.Status == StatusFailed {
			failed = append(failed, entry)
		}
	}
	return failed
}

// Entries returns a copy of all recorded entries, ordered by step then key
// for stable reporting.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Step != out[j].Step {
			return out[i].Step < out[j].Step
		}
		return out[i].Key < out[j].Key
	})
	return out
}
