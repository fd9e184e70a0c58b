// Package pipeline orchestrates one blade import from raw files to a
// post-processed solid.
//
// Data flows strictly forward through fixed stages: parse, validate,
// resolve, filter, build, assemble, post-process. Each stage's output is
// the next stage's sole input, status events fire after every stage, and
// cancellation is checked only at stage boundaries because kernel calls
// are opaque.
//
// Two failures are designed recoveries rather than errors: a guided loft
// whose rails do not intersect every profile retries unguided, and root
// filtering that would leave fewer than two stations stops short with a
// warning. Everything else fails the run at the stage where it was
// detected, carrying the stage name in the returned error.
package pipeline
