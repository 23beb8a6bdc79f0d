package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State tracks one pipeline run: Idle -> Running -> Completed. Running is
// the only state in which the output sequences are mutated.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

// ErrRunning is returned when Run is called while a run is in progress.
var ErrRunning = errors.New("engine: pipeline run already in progress")

// Diagnostic is the verbatim body of a message that produced no record,
// tagged with why. It is created once and never mutated.
type Diagnostic struct {
	Body   string
	Reason string
}

const (
	ReasonUnrecognized = "unrecognized"
	ReasonEmptyBody    = "empty body"
)

// Stats are the aggregate counts reported to the query collaborator at the
// end of a run.
type Stats struct {
	Total          int
	Classified     int
	Unrecognized   int
	Duplicates     int
	ZeroAmounts    int
	ClockFallbacks int
	ByKind         map[Kind]int
}

// Result is the output of one run. Records and Diagnostics are in input
// order; ownership transfers to the caller.
type Result struct {
	Records     []Record
	Diagnostics []Diagnostic
	Stats       Stats
}

// Pipeline classifies and normalizes a batch of raw messages. The rule
// table and clock are fixed at construction; a Pipeline holds no state
// between runs and the rule table is never mutated, so one run may fan
// messages out across workers.
type Pipeline struct {
	classifier *Classifier
	norm       normalizer
	log        zerolog.Logger
	workers    int

	mu    sync.Mutex
	state State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a structured logger. The default discards output.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithClock overrides the time source used when a message carries no
// parsable date and no export timestamp. Tests inject a fixed clock here.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.norm.clock = clock }
}

// WithWorkers processes messages on n goroutines. Output is resequenced by
// input index, so results are identical to a sequential run.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New builds a pipeline over the given recognizer table. The table is
// treated as read-only for the pipeline's lifetime.
func New(rules []Rule, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: NewClassifier(rules),
		norm:       normalizer{clock: time.Now},
		log:        zerolog.Nop(),
		workers:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the current run state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// outcome is the result of processing a single message. Exactly one of
// record and diag is set.
type outcome struct {
	record *Record
	diag   *Diagnostic
	notes  []string
}

// Run processes every message and returns the canonical records, the
// diagnostic log and the run counts. A failure on one message never aborts
// the rest of the batch. Run returns ErrRunning if invoked concurrently on
// the same pipeline.
func (p *Pipeline) Run(msgs []RawMessage) (Result, error) {
	p.mu.Lock()
	if p.state == StateRunning {
		p.mu.Unlock()
		return Result{}, ErrRunning
	}
	p.state = StateRunning
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = StateCompleted
		p.mu.Unlock()
	}()

	outcomes := make([]outcome, len(msgs))
	if p.workers > 1 {
		p.runParallel(msgs, outcomes)
	} else {
		for i, msg := range msgs {
			outcomes[i] = p.processOne(msg)
		}
	}

	res := Result{Stats: Stats{Total: len(msgs), ByKind: make(map[Kind]int)}}
	seen := make(map[string]bool, len(msgs))

	for i, out := range outcomes {
		for _, note := range out.notes {
			p.log.Warn().Int("index", i).Str("note", note).Msg("Field fallback applied")
			switch note {
			case noteZeroAmount:
				res.Stats.ZeroAmounts++
			case noteClockFallback:
				res.Stats.ClockFallbacks++
			}
		}

		if out.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *out.diag)
			res.Stats.Unrecognized++
			continue
		}

		rec := *out.record
		if seen[rec.ID] {
			p.log.Warn().Int("index", i).Str("transaction_id", rec.ID).Msg("Duplicate identifier, keeping first record")
			res.Stats.Duplicates++
			continue
		}
		seen[rec.ID] = true
		res.Records = append(res.Records, rec)
		res.Stats.Classified++
		res.Stats.ByKind[rec.Kind]++
	}

	p.log.Info().
		Int("total", res.Stats.Total).
		Int("classified", res.Stats.Classified).
		Int("unrecognized", res.Stats.Unrecognized).
		Int("duplicates", res.Stats.Duplicates).
		Msg("Run completed")

	return res, nil
}

func (p *Pipeline) runParallel(msgs []RawMessage, outcomes []outcome) {
	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.processOne(msgs[i])
			}
		}()
	}

	for i := range msgs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// processOne classifies and normalizes a single message. Panics from
// malformed input are contained here and converted to a diagnostic so the
// batch keeps going.
func (p *Pipeline) processOne(msg RawMessage) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("Recovered while processing message")
			out = outcome{diag: &Diagnostic{
				Body:   msg.Body,
				Reason: fmt.Sprintf("processing panic: %v", r),
			}}
		}
	}()

	if msg.Body == "" {
		p.log.Warn().Msg("Skipping message with empty body")
		return outcome{diag: &Diagnostic{Body: msg.Body, Reason: ReasonEmptyBody}}
	}

	match, ok := p.classifier.Classify(msg.Body)
	if !ok {
		return outcome{diag: &Diagnostic{Body: msg.Body, Reason: ReasonUnrecognized}}
	}

	rec, notes := p.norm.record(msg, match)
	return outcome{record: &rec, notes: notes}
}
