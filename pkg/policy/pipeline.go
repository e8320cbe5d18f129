package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/xhad/compligen/internal/logger"
	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
	"github.com/xhad/compligen/pkg/metrics"
)

// State is a stage of one generation run.
type State string

const (
	StateIdle             State = "IDLE"
	StateRetrieving       State = "RETRIEVING"
	StatePrompting        State = "PROMPTING"
	StateGenerating       State = "GENERATING"
	StateRepairing        State = "REPAIRING"
	StateComplete         State = "COMPLETE"
	StateRetrievalFailed  State = "RETRIEVAL_FAILED"
	StateGenerationFailed State = "GENERATION_FAILED"
)

var transitions = map[State][]State{
	StateIdle:       {StateRetrieving},
	StateRetrieving: {StatePrompting, StateRetrievalFailed},
	StatePrompting:  {StateGenerating, StateGenerationFailed},
	StateGenerating: {StateRepairing, StateGenerationFailed},
	StateRepairing:  {StateComplete, StateGenerationFailed},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// run tracks the state of a single generation. It is not shared between
// goroutines.
type run struct {
	docType models.DocumentType
	state   State
	entered time.Time
	started time.Time
	log     *logger.Logger
	metrics *metrics.Metrics
	history []State
}

func newRun(dt models.DocumentType, log *logger.Logger, m *metrics.Metrics) *run {
	now := time.Now()
	return &run{
		docType: dt,
		state:   StateIdle,
		entered: now,
		started: now,
		log:     log.With("doc_type", string(dt)),
		metrics: m,
	}
}

// to moves the run to next. An illegal transition is a programming error.
func (r *run) to(next State) {
	if !CanTransition(r.state, next) {
		panic(fmt.Sprintf("policy: illegal transition %s -> %s", r.state, next))
	}
	now := time.Now()
	if r.state != StateIdle {
		r.metrics.ObserveStage(r.docType, string(r.state), now.Sub(r.entered))
	}
	r.log.Debug("pipeline transition", "from", string(r.state), "state", string(next))
	r.state = next
	r.entered = now
	r.history = append(r.history, next)
}

// fail moves the run to the failure state for the current stage and returns
// err tagged with the document type.
func (r *run) fail(err error) error {
	from := r.state
	next := StateGenerationFailed
	if from == StateRetrieving {
		next = StateRetrievalFailed
	}
	r.to(next)

	if types.KindOf(err) == "" {
		err = fmt.Errorf("%s: %s: %w", r.docType, strings.ToLower(string(from)), err)
	} else {
		err = types.WithDocType(err, r.docType)
	}
	r.log.Warn("generation failed", "state", string(next), "kind", metrics.Outcome(err), "error", err)
	r.metrics.RecordOutcome(r.docType, err)
	return err
}

func (r *run) complete() {
	r.to(StateComplete)
	r.log.Info("document generated", "elapsed", time.Since(r.started).String())
	r.metrics.RecordOutcome(r.docType, nil)
}
