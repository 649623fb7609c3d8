// Package pipeline is the deployment sequencer at the core of icdctl.
//
// A run is a fixed, totally ordered list of stages. Each stage applies one
// unit of desired state (a rendered chart, a credential derivation, or the
// ingestion hand-off) and may gate on a readiness condition before the next
// stage starts. Execution is strictly sequential: one logical thread walks
// the list, the RunContext is mutated only between stage boundaries, and the
// first failure halts the run with the failing stage's name and cause.
//
// There is no rollback and no saved run ledger. Every apply is a declarative
// re-submission and every readiness check re-reads live state, so re-running
// against an already-converged cluster only re-derives credentials and
// re-confirms readiness.
package pipeline
