// Package heuristics provides the deterministic genre, pacing, and title
// lookups that guide generation.
//
// The lookups never fail and never touch the network. They are exposed both as
// plain functions and as named capabilities that a generation backend can
// offer to the model as callable tools.
package heuristics
