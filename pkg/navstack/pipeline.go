package navstack

import (
	"cmp"
	"runtime/debug"
	"slices"
)

// Pipeline is an ordered chain of interceptors bound to one container.
type Pipeline struct {
	interceptors []Interceptor
}

// NewPipeline creates a pipeline with the given interceptors, registered in order.
func NewPipeline(interceptors ...Interceptor) *Pipeline {
	p := &Pipeline{}
	for _, i := range interceptors {
		p.Add(i)
	}
	return p
}

// Add registers an interceptor. Higher priorities run first; among equal
// priorities registration order is kept.
func (p *Pipeline) Add(interceptor Interceptor) {
	p.interceptors = append(p.interceptors, interceptor)
	slices.SortStableFunc(p.interceptors, func(a, b Interceptor) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// Remove unregisters every interceptor with the given name.
func (p *Pipeline) Remove(name string) bool {
	before := len(p.interceptors)
	p.interceptors = slices.DeleteFunc(p.interceptors, func(i Interceptor) bool {
		return i.Name() == name
	})
	return len(p.interceptors) != before
}

// Interceptors returns the interceptors in evaluation order.
func (p *Pipeline) Interceptors() []Interceptor {
	return slices.Clone(p.interceptors)
}

// Len returns the number of registered interceptors.
func (p *Pipeline) Len() int {
	return len(p.interceptors)
}

// Open runs an open through the chain. A cancel stops evaluation. A replacement
// is handed to the interceptors after the one that produced it, never back to
// earlier ones.
func (p *Pipeline) Open(ctx *InterceptContext, instruction Instruction) (OpenOutcome, error) {
	current := instruction
	replaced := false

	for _, interceptor := range p.interceptors {
		out, fault := guard(interceptor, "open", func() OpenOutcome {
			return interceptor.InterceptOpen(ctx, current)
		})
		if fault != nil {
			return CancelOpen(), fault
		}

		switch out.Decision {
		case OpenCancel:
			return out, nil
		case OpenReplace:
			current = out.Instruction
			replaced = true
		case OpenAllow:
			if !out.Instruction.IsZero() {
				current = out.Instruction
			}
		}
	}

	if replaced {
		return ReplaceOpen(current), nil
	}
	return AllowOpen(current), nil
}

// Close runs a close through the chain. The first non-allow verdict wins.
func (p *Pipeline) Close(ctx *InterceptContext, instruction Instruction) (CloseOutcome, error) {
	for _, interceptor := range p.interceptors {
		out, fault := guard(interceptor, "close", func() CloseOutcome {
			return interceptor.InterceptClose(ctx, instruction)
		})
		if fault != nil {
			return CancelClose(), fault
		}
		if out.Decision != CloseAllow {
			return out, nil
		}
	}
	return AllowClose(), nil
}

// Result runs a result delivery through the chain. The first verdict other than
// plain delivery wins.
func (p *Pipeline) Result(ctx *InterceptContext, instruction Instruction, result any) (ResultOutcome, error) {
	for _, interceptor := range p.interceptors {
		out, fault := guard(interceptor, "result", func() ResultOutcome {
			return interceptor.InterceptResult(ctx, instruction, result)
		})
		if fault != nil {
			return CancelResult(), fault
		}
		if out.Decision != ResultDeliver {
			return out, nil
		}
	}
	return DeliverResult(), nil
}

func guard[T any](interceptor Interceptor, op string, fn func() T) (out T, fault *InterceptorFaultError) {
	defer func() {
		if r := recover(); r != nil {
			fault = &InterceptorFaultError{
				Interceptor: interceptor.Name(),
				Op:          op,
				Recovered:   r,
				Stack:       debug.Stack(),
			}
		}
	}()
	return fn(), nil
}
