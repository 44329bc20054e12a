package flow

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
)

// Step is one declared unit of a flow.
type Step struct {
	ID            string                  `json:"id"`
	Key           navstack.DestinationKey `json:"-"`
	Fingerprint   int64                   `json:"fingerprint"`
	Direction     navstack.Direction      `json:"direction"`
	Transient     bool                    `json:"transient"`
	InstructionID string                  `json:"instruction_id,omitempty"` // Empty when the step is not on the backstack
}

// CompletedStep is a stored step result, valid while Fingerprint matches the
// step declared at StepID.
type CompletedStep struct {
	StepID      string `json:"step_id"`
	Fingerprint int64  `json:"fingerprint"`
	Result      any    `json:"result"`
}

// StepOption customizes a step declaration.
type StepOption func(*stepConfig)

type stepConfig struct {
	id        string
	deps      []any
	direction navstack.Direction
	transient bool
}

// DependsOn declares the values a step's stored result depends on. When any of
// them changes the stored result is discarded and the step is shown again.
func DependsOn(values ...any) StepOption {
	return func(c *stepConfig) {
		c.deps = append(c.deps, values...)
	}
}

// Transient marks a step that is skipped when going back past it, and skipped
// going forward while its dependencies are unchanged.
func Transient() StepOption {
	return func(c *stepConfig) {
		c.transient = true
	}
}

// WithDirection opens the step's destination with direction instead of Push.
func WithDirection(direction navstack.Direction) StepOption {
	return func(c *stepConfig) {
		c.direction = direction
	}
}

// WithStepID names the step instead of using the source position of the Open
// call. Each name may only be used from one call site.
func WithStepID(id string) StepOption {
	return func(c *stepConfig) {
		c.id = id
	}
}

// Scope is handed to the step function for one evaluation pass.
type Scope struct {
	state     *state
	counts    map[string]int
	origins   map[string]string
	declared  []Step
	pending   int
	violation error
}

func newScope(st *state) *Scope {
	return &Scope{
		state:   st,
		counts:  make(map[string]int),
		origins: make(map[string]string),
		pending: -1,
	}
}

// Pass returns the number of the evaluation pass, starting at 1.
func (s *Scope) Pass() uint64 {
	return s.state.passes.Load()
}

func (s *Scope) stopped() bool {
	return s.pending >= 0 || s.violation != nil
}

// Open declares a step showing key and returns its stored result, or a
// suspended outcome when the step has no valid result yet. Once any step in a
// pass has suspended, later Open calls do nothing and stay suspended.
func Open[R any](s *Scope, key navstack.DestinationKey, opts ...StepOption) Outcome[R] {
	if s.stopped() {
		if s.violation != nil {
			return Escape[R]()
		}
		return Suspended[R]()
	}

	cfg := stepConfig{direction: navstack.DirectionPush}
	for _, opt := range opts {
		opt(&cfg)
	}

	site := callSite(1)
	base := cfg.id
	if base == "" {
		base = site
	} else if origin, seen := s.origins[base]; seen && origin != site {
		s.violation = navstack.NewFlowInvariantError(base, "step id used from more than one call site: "+origin+" and "+site, nil)
		return Escape[R]()
	}
	s.origins[base] = site

	occurrence := s.counts[base]
	s.counts[base] = occurrence + 1

	step := Step{
		ID:          base + "#" + strconv.Itoa(occurrence),
		Key:         key,
		Fingerprint: Fingerprint(cfg.deps...),
		Direction:   cfg.direction,
		Transient:   cfg.transient,
	}
	s.declared = append(s.declared, step)

	done, ok := s.state.results[step.ID]
	if ok && done.Fingerprint != step.Fingerprint {
		s.state.logger.Debug("step dependencies changed, discarding result", "step", step.ID)
		delete(s.state.results, step.ID)
		ok = false
	}
	if !ok {
		s.pending = len(s.declared) - 1
		return Suspended[R]()
	}

	value, err := convertResult[R](done.Result)
	if err != nil {
		s.violation = navstack.NewFlowInvariantError(step.ID, "stored result has incompatible type", err)
		return Escape[R]()
	}
	done.Result = value
	s.state.results[step.ID] = done
	return Resolved(value)
}

func convertResult[R any](raw any) (R, error) {
	var zero R
	if raw == nil {
		return zero, nil
	}
	if v, ok := raw.(R); ok {
		return v, nil
	}
	// Results restored from saved state arrive as raw JSON until first read.
	if msg, ok := raw.(json.RawMessage); ok {
		var v R
		if err := json.Unmarshal(msg, &v); err != nil {
			return zero, err
		}
		return v, nil
	}
	return zero, fmt.Errorf("have %T, want %T", raw, zero)
}

// callSite returns file:line of the caller skip frames above the function
// calling callSite.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return file + ":" + strconv.Itoa(line)
}
