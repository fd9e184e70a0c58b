// Package blade defines the core data model for blade import: stations,
// blade definitions, airfoil profiles and the error taxonomy shared by
// every pipeline stage.
//
// All entities are scoped to a single import run. Nothing here caches or
// persists across runs; a Definition is parsed, validated, consumed and
// discarded.
//
// Units: source files are authored in meters, the model stores
// centimeters. Angles are degrees with a single normalized sign
// convention established at parse time.
package blade
