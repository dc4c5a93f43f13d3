// Package main provides the entry point for the sitegrep CLI.
//
// sitegrep crawls a website starting from a base URL and either searches
// page text for a literal string or collects images by alt text.
//
// Usage:
//
//	sitegrep search <base-url> <string>
//	sitegrep images --research cat <base-url>
//
// See --help for all available options.
package main

import "os"

// main is the entry point for sitegrep.
func main() {
	os.Exit(Execute())
}
