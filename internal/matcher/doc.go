// Package matcher implements the URL match automaton used by the stream scanner.
//
// An Automaton recognizes a single candidate URL of the form
// scheme://domain[/path] that starts at a fixed offset of the input stream.
// It consumes one byte at a time, never looks ahead and never backtracks.
// The grammar is intentionally small:
//
//	scheme  = "http" | "https"
//	domain  = 1*( ALPHA | DIGIT | "." | "-" )
//	path    = "/" *( ALPHA | DIGIT | "." | "," | "/" | "+" | "_" )
//
// The scheme is case-sensitive. Domain bytes are folded to ASCII lowercase
// as they are accumulated, path bytes are kept verbatim. A URL without an
// explicit path is reported with the path "/".
//
// Matching is greedy: an automaton keeps accumulating while the byte class
// allows it and finishes on the first byte that does not belong to the
// current component. That terminating byte is not part of the match.
//
// The automaton is a plain value type with a switch-based transition
// function. One is spawned for every input byte and almost all of them die
// on the first byte, so it stays allocation-free until it starts
// accumulating a domain.
package matcher
