package finddups

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

// DuplicateGroup represents a group of files with the same hash
type DuplicateGroup struct {
	Hash   string   `json:"hash" yaml:"hash"`
	Digest []byte   `json:"-" yaml:"-"`
	Files  []string `json:"files" yaml:"files"`
	Count  int      `json:"count" yaml:"count"`
}

// Result is the outcome of one detection run
type Result struct {
	Algorithm   string
	Groups      []DuplicateGroup // ordered by first occurrence of each digest
	Failures    []FailureRecord  // in file set order
	FilesHashed int
	BytesHashed int64
}

// HasFailures returns true if any file could not be read
func (r *Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// ExitStatus is 1 when any file could not be read, 0 otherwise.
// Finding duplicates does not change it.
func (r *Result) ExitStatus() int {
	if r.HasFailures() {
		return ExitReadFailure
	}
	return ExitOK
}

// DetectorOptions configures a Detector
type DetectorOptions struct {
	Algorithm  string // defaults to md5
	Workers    int    // defaults to DefaultHashWorkers
	BufferSize int    // hashing slice size in bytes, defaults to 2MiB

	// Called in file set order from the goroutine running Run
	OnHashed  func(path string, digest []byte)
	OnFailure func(record FailureRecord)
}

// Detector hashes file sets and groups identical contents. A Detector holds
// no per-run state and may be reused.
type Detector struct {
	algorithm  *HashAlgorithm
	workers    int
	bufferSize int
	onHashed   func(path string, digest []byte)
	onFailure  func(record FailureRecord)
}

// NewDetector validates opts and creates a Detector
func NewDetector(opts DetectorOptions) (*Detector, error) {
	name := opts.Algorithm
	if name == "" {
		name = DefaultHashAlgorithm
	}
	algorithm, err := GetHashAlgorithm(name)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers == 0 {
		workers = DefaultHashWorkers
	}
	if err := ValidateHashWorkers(workers); err != nil {
		return nil, err
	}

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Detector{
		algorithm:  algorithm,
		workers:    workers,
		bufferSize: bufferSize,
		onHashed:   opts.OnHashed,
		onFailure:  opts.OnFailure,
	}, nil
}

// runState is owned by a single Run call
type runState struct {
	groups      map[string]*DuplicateGroup // keyed by raw digest bytes
	order       []string                   // digests in first-occurrence order
	failures    []FailureRecord
	filesHashed int
	bytesHashed int64
}

func newRunState() *runState {
	return &runState{
		groups: make(map[string]*DuplicateGroup),
	}
}

// Run hashes files and returns the duplicate groups and read failures.
// Output callbacks and group membership follow the order of files regardless
// of how many workers are used. Cancelling ctx returns ErrAborted and no result.
func (d *Detector) Run(ctx context.Context, files []string) (*Result, error) {
	defer VerboseEnter()()

	if err := ctx.Err(); err != nil {
		return nil, ErrAborted
	}

	state := newRunState()
	manager := newHashManager(d.workers, d.algorithm, d.bufferSize, ctx.Done())

	go func() {
		defer manager.FinishSubmitting()
		for i, path := range files {
			if !manager.SubmitHashJob(&hashJob{Index: i, Path: path}) {
				return
			}
		}
	}()

	// Reorder buffer: outcomes are released strictly by file set index
	pending := make(map[int]*hashOutcome)
	next := 0
	for outcome := range manager.Results() {
		pending[outcome.Index] = outcome
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if errors.Is(ready.Err, ErrAborted) {
				break
			}
			d.collect(state, ready)
			next++
		}
	}

	if ctx.Err() != nil || next < len(files) {
		VerboseLog(1, "run aborted after %d of %d file(s)", next, len(files))
		return nil, ErrAborted
	}

	result := state.result(d.algorithm.Name)
	VerboseLog(1, "hashed %d file(s), %s with %s: %d duplicate group(s), %d unreadable",
		result.FilesHashed, formatBytes(result.BytesHashed), d.algorithm.Name,
		len(result.Groups), len(result.Failures))
	return result, nil
}

// collect adds one outcome to the run state and fires the callbacks
func (d *Detector) collect(state *runState, outcome *hashOutcome) {
	if outcome.Err != nil {
		record := newFailureRecord(outcome.Path, outcome.Err)
		state.failures = append(state.failures, record)
		DebugLog(DebugHash, "%s: %v", outcome.Path, outcome.Err)
		if d.onFailure != nil {
			d.onFailure(record)
		}
		return
	}

	state.filesHashed++
	state.bytesHashed += outcome.Size
	if d.onHashed != nil {
		d.onHashed(outcome.Path, outcome.Digest)
	}

	key := string(outcome.Digest)
	group, exists := state.groups[key]
	if !exists {
		group = &DuplicateGroup{
			Hash:   hex.EncodeToString(outcome.Digest),
			Digest: outcome.Digest,
		}
		state.groups[key] = group
		state.order = append(state.order, key)
	}
	group.Files = append(group.Files, outcome.Path)
	group.Count = len(group.Files)
}

// result selects the groups with more than one member
func (s *runState) result(algorithm string) *Result {
	result := &Result{
		Algorithm:   algorithm,
		Groups:      []DuplicateGroup{},
		Failures:    s.failures,
		FilesHashed: s.filesHashed,
		BytesHashed: s.bytesHashed,
	}
	if result.Failures == nil {
		result.Failures = []FailureRecord{}
	}

	for _, key := range s.order {
		group := s.groups[key]
		if len(group.Files) > 1 {
			result.Groups = append(result.Groups, *group)
		}
	}
	return result
}

// FindDuplicates expands inputs and runs a detector over the resulting file set
func FindDuplicates(ctx context.Context, inputs []string, expandOpts ExpandOptions, detectorOpts DetectorOptions) (*Result, error) {
	detector, err := NewDetector(detectorOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}
	return detector.Run(ctx, ExpandPaths(inputs, expandOpts))
}
