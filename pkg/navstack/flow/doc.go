// Package flow runs multi-step, result-producing navigation flows written as
// straight-line code.
//
// A step function declares its steps in order with Open. Each call either
// returns the stored result of that step, or reports that the step is still
// waiting, in which case the step function stops and returns. The Manager
// turns the declared steps into a real backstack on a container and re-runs
// the step function whenever a step delivers a result.
//
// # Basic Usage
//
//	type Signup struct {
//	    Email string
//	    Plan  string
//	}
//
//	m := flow.New(container, func(s *flow.Scope) flow.Outcome[Signup] {
//	    email := flow.Open[string](s, EmailKey{})
//	    e, ok := email.Value()
//	    if !ok {
//	        return flow.Halt[Signup](email)
//	    }
//
//	    // Re-shown only when the email changes.
//	    plan := flow.Open[string](s, PlanKey{}, flow.DependsOn(e))
//	    p, ok := plan.Value()
//	    if !ok {
//	        return flow.Halt[Signup](plan)
//	    }
//	    return flow.Resolved(Signup{Email: e, Plan: p})
//	}, flow.Options[Signup]{
//	    OnCompleted: func(s Signup) { ... },
//	})
//	m.Start()
//
// # Step Identity
//
// A step is identified by the source position of its Open call plus how many
// times that position has been reached in the current pass, so a loop that
// opens the same destination twice gets two steps. WithStepID replaces the
// source position with a stable name, which is required if step state is
// persisted across builds.
//
// # Going Back
//
// When the user closes a step's destination, that step and everything after it
// are forgotten, as are transient steps directly before it. Transient steps
// keep their results, so going forward again skips them as long as their
// dependencies are unchanged.
package flow
