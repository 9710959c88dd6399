// Package schema defines the data contracts for generated short-drama content
// and validates backend output against them.
//
// Every generated object (season blueprint, episode outline) arrives as JSON
// from a generation backend. Validate decodes the payload and checks numeric
// ranges, non-blank required strings, list-length bounds, and the cross-field
// rule that a blueprint carries exactly one title per episode. All violations
// are reported together in a single *ValidationError so a corrective re-prompt
// can address them in one round.
//
// Contract exposes the same rules as field descriptions for prompt assembly.
// Values returned from this package are treated as immutable by callers.
package schema
