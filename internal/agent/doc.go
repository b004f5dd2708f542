// Package agent wires the keyword-hunting workflow onto the graph runtime:
// the state schema and its reducers, the nodes, the routing rules, and the
// report tracking that records which scrape actually produced the hit.
package agent
