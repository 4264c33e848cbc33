// Package types defines the shared data structures for the jurisgraph
// pipeline: source documents pulled from the judgment store, the normalized
// judgment records assembled from them, the RDF statements emitted for the
// graph loader, and the per-run statistics and results.
package types
