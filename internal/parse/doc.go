// Package parse reads the two supported blade-definition schemas and
// airfoil coordinate files.
//
// Schema detection is heuristic but cheap: QBlade CE v2.x files carry a
// "Blade Data" block with a "POS_[m]" column header, legacy v0.963 files
// have three free-text header lines followed by fixed-column rows.
// Detection happens exactly once; downstream stages only ever see the
// tagged blade.Definition, never raw text.
//
// Parsing is all-or-nothing. A malformed station row fails the whole file
// with a FileFormatError naming the line; no partial station list escapes
// this package.
package parse
