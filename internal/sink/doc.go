// Package sink provides result sinks for the traversal engine: a console
// sink that prints matches as they are found, a recorder that accumulates
// them for the final report, an image downloader that saves matched images
// to disk, and a multi sink that fans results out to several sinks.
//
// Sinks receive each match exactly once, in traversal order. A sink error
// never stops a crawl; the engine logs it and continues.
package sink
