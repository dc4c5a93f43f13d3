// Package extract parses fetched HTML pages into the document form the
// traversal engine works on: visible text, outbound links in document
// order, and image references with their alt text.
//
// Design decision: We parse with goquery rather than walking the x/net/html
// node tree by hand because:
//  1. Selector-based extraction is shorter and easier to audit
//  2. goquery tolerates the malformed HTML common on the web
//  3. Removing script/style subtrees before taking text is a one-liner
package extract
