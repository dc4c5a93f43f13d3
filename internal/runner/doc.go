// Package runner wires the crawl collaborators together and executes
// runs: one traversal engine per target, fed by an HTTP fetcher and a
// goquery extractor, with results fanned out to the console, the report
// recorder, and (in images mode) the download sink. Multiple targets run
// concurrently under an errgroup with a configurable limit.
package runner
