// Package pipeline runs a single season generation: blueprint, episode
// expansion, and compilation into a schema.ScriptPackage.
//
// A Pipeline is single use. Expansion is sequential by default; a bounded
// concurrency option keeps output ordered by episode number. The failure
// policy decides whether one failed episode aborts the run or is recorded in
// the package's failed episode list.
package pipeline
