// Package kernel defines the boundary to the external geometry kernel.
//
// The importer treats the kernel as an opaque synchronous service: it
// hands over ordered profile curves, gets back a solid handle, and later
// queries mass properties or applies rigid translations through the same
// handle. Nothing about the solid's representation crosses this boundary.
//
// Failures carry a machine-readable Code. Exactly one code is
// recoverable by policy: CodeGuideRails, which the solid assembler
// answers with an unguided retry. Everything else propagates as a hard
// geometry failure.
//
// The bundled implementation lives in the mesh subpackage; a remote CAD
// kernel would implement the same interface.
package kernel
