// Package main provides the entry point for the urltally CLI.
//
// urltally counts the http and https URLs found in text streams and ranks
// their domains and paths by frequency.
//
// Usage:
//
//	urltally scan access.log
//	cat page.html | urltally scan -
//
// See --help for all available options.
package main

func main() {
	Execute()
}
