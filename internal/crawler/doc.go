// Package crawler implements the traversal engine at the heart of sitegrep.
//
// # Architecture
//
// The Engine walks the link graph of a website breadth-first from a base URL.
// It owns the three pieces of traversal state for a run: the Frontier (the
// FIFO queue of URLs awaiting a visit), the VisitedSet (URLs already
// processed), and the SkipCounter (the shared budget of tolerated anomalies).
// Fetching, extraction, and result handling are collaborators behind the
// Fetcher, Extractor, and Sink interfaces; the engine never performs I/O of
// its own beyond calling them.
//
// Design decision: We use an explicit frontier processed by an iterative
// loop rather than recursing into each discovered link because:
//  1. It avoids call-stack depth limits on deep link graphs
//  2. It makes the breadth-first visit order explicit and testable
//  3. It keeps all traversal state in one place, owned by one Engine
//
// # Skip accounting
//
// Two anomalies are tolerated and share a single budget: popping a URL that
// is already in the VisitedSet, and a fetch or parse failure. Reaching the
// configured limit is allowed; the run aborts on the skip that surpasses it.
//
// # Usage
//
//	engine, err := crawler.NewEngine(cfg, fetcher, extractor, predicate, sink)
//	result, err := engine.Run(ctx)
//
// Engines are single-use: one Engine performs one run. Multiple independent
// traversals can run concurrently by creating one Engine per base URL.
package crawler
