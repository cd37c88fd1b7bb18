// Package pipeline orchestrates a run: read the report, resolve candidates,
// plan per-file actions, and (in apply mode) convert, verify, and commit.
//
// Per-file state machine:
//
//	Located → Planned → (Preview: Reported)
//	                  | (Apply: Converting → Verifying → {Committed | Failed})
//
// with NotFound and Skipped as early terminal states. Every per-file failure
// is isolated; only report parsing, an inaccessible root, or a held apply
// lock abort the run. The original file is deleted if and only if its
// replacement passed verification.
package pipeline
