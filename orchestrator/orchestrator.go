// Package orchestrator sequences letter generation and refinement and owns
// the canonical Document together with its refinement session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"recletter/generator"
)

// ErrSuperseded is returned when a newer generation replaced the state the
// call was working against. Its result is discarded.
var ErrSuperseded = errors.New("superseded by a newer generation")

// Status is the externally visible orchestrator state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusRefining   Status = "refining"
	StatusError      Status = "error"
)

// Generator produces a Document from raw input.
type Generator interface {
	Generate(ctx context.Context, in generator.GenerationInput) (generator.Document, error)
}

// Sessions is the refinement session contract.
type Sessions interface {
	Open(seedText string) generator.SessionHandle
	Send(ctx context.Context, h generator.SessionHandle, message string) (string, error)
	Transcript(h generator.SessionHandle) ([]generator.Turn, error)
}

// RefineResult describes one completed refinement turn.
type RefineResult struct {
	Reply   string            `json:"reply"`
	Verdict generator.Verdict `json:"verdict"`
	Applied bool              `json:"applied"`
}

// Snapshot is a read-only copy of the orchestrator state for rendering.
type Snapshot struct {
	Status     Status              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Session    string              `json:"session,omitempty"`
	Document   *generator.Document `json:"document,omitempty"`
	Transcript []generator.Turn    `json:"transcript"`
}

type Orchestrator struct {
	gen        Generator
	sessions   Sessions
	classifier generator.Classifier
	logger     *slog.Logger

	mu      sync.Mutex
	doc     *generator.Document
	handle  generator.SessionHandle
	lastErr string

	// epoch increases with every generate call; a call only commits its
	// result while it still holds the latest epoch.
	epoch          uint64
	cancelGenerate context.CancelFunc

	nextRefine uint64
	refining   map[uint64]context.CancelFunc
}

// New wires the orchestrator. A nil classifier selects SalutationClassifier.
func New(gen Generator, sessions Sessions, classifier generator.Classifier, logger *slog.Logger) (*Orchestrator, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if sessions == nil {
		return nil, errors.New("sessions are required")
	}
	if classifier == nil {
		classifier = generator.SalutationClassifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gen:        gen,
		sessions:   sessions,
		classifier: classifier,
		logger:     logger,
		refining:   make(map[uint64]context.CancelFunc),
	}, nil
}

// Generate produces a new Document and opens a fresh session seeded with its
// letter. A generation already in flight is cancelled and superseded. On
// failure the previous Document and session stay untouched.
func (o *Orchestrator) Generate(ctx context.Context, in generator.GenerationInput) (generator.Document, error) {
	in, err := generator.ValidateInput(in)
	if err != nil {
		return generator.Document{}, err
	}

	o.mu.Lock()
	if o.cancelGenerate != nil {
		o.cancelGenerate()
	}
	o.epoch++
	epoch := o.epoch
	genCtx, cancel := context.WithCancel(ctx)
	o.cancelGenerate = cancel
	o.mu.Unlock()
	defer cancel()

	doc, err := o.gen.Generate(genCtx, in)

	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch {
		o.logger.Info("generation superseded", "epoch", epoch)
		return generator.Document{}, ErrSuperseded
	}
	o.cancelGenerate = nil

	if err != nil {
		o.lastErr = err.Error()
		o.logger.Error("generation failed", "error", err)
		return generator.Document{}, err
	}

	// 新会话生效后，旧会话上的修订都已失效。
	for id, cancelRefine := range o.refining {
		cancelRefine()
		delete(o.refining, id)
	}
	committed := doc
	o.doc = &committed
	o.handle = o.sessions.Open(doc.PrimaryText)
	o.lastErr = ""
	o.logger.Info("letter generated", "session", o.handle, "letter_len", len(doc.PrimaryText))
	return doc, nil
}

// Refine relays one message through the current session. A reply classified
// as a full replacement becomes the new primary text; the other Document
// fields are never touched. Upstream failures are recorded in the transcript
// and returned wrapped in generator.ErrRefinementFailure.
func (o *Orchestrator) Refine(ctx context.Context, message string) (RefineResult, error) {
	o.mu.Lock()
	if o.doc == nil || o.handle == "" {
		o.mu.Unlock()
		return RefineResult{}, fmt.Errorf("%w: generate a letter first", generator.ErrSessionNotOpen)
	}
	handle := o.handle
	o.nextRefine++
	id := o.nextRefine
	refineCtx, cancel := context.WithCancel(ctx)
	o.refining[id] = cancel
	o.mu.Unlock()
	defer cancel()

	reply, err := o.sessions.Send(refineCtx, handle, message)

	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.refining, id)

	if handle != o.handle {
		o.logger.Info("refinement reply discarded", "session", handle, "current", o.handle)
		return RefineResult{}, fmt.Errorf("%w: session %s was replaced", ErrSuperseded, handle)
	}

	if err != nil {
		if errors.Is(err, generator.ErrRefinementFailure) {
			o.lastErr = err.Error()
			return RefineResult{Reply: generator.ErrorReply}, err
		}
		return RefineResult{}, err
	}
	o.lastErr = ""

	res := RefineResult{Reply: reply, Verdict: o.classifier.Classify(reply)}
	if res.Verdict == generator.FullReplacement {
		o.doc.PrimaryText = reply
		res.Applied = true
	}
	o.logger.Info("refinement turn", "session", handle, "verdict", res.Verdict.String())
	return res, nil
}

// Document returns a copy of the current Document.
func (o *Orchestrator) Document() (generator.Document, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.doc == nil {
		return generator.Document{}, false
	}
	return *o.doc, true
}

// Status reports the current state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.statusLocked()
}

func (o *Orchestrator) statusLocked() Status {
	switch {
	case o.cancelGenerate != nil:
		return StatusGenerating
	case len(o.refining) > 0:
		return StatusRefining
	case o.lastErr != "":
		return StatusError
	case o.doc != nil:
		return StatusReady
	default:
		return StatusIdle
	}
}

// Snapshot copies the Document, transcript and status for rendering.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Status:     o.statusLocked(),
		Error:      o.lastErr,
		Session:    string(o.handle),
		Transcript: []generator.Turn{},
	}
	if o.doc != nil {
		d := *o.doc
		snap.Document = &d
	}
	if o.handle != "" {
		if turns, err := o.sessions.Transcript(o.handle); err == nil {
			snap.Transcript = turns
		}
	}
	return snap
}
