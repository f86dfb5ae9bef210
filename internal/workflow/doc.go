// Package workflow defines the two agent workflows as stategraph graphs.
//
// Plan-and-Execute plans the question into steps, runs each step through
// a tool-using agent and replans after every step until it can answer:
//
//	planner -> executor -> replanner -> (executor | END)
//
// Self-Reflection researches, grades the findings against a checklist and
// researches again until they are sufficient or MaxReflectionCycles is
// reached, then writes the answer:
//
//	researcher -> grader -> (researcher | generator) -> END
//
// Both run under the engine step bound passed to Service.Invoke. The
// reflection cap is a separate, fixed bound.
package workflow
