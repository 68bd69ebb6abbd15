// Package types provides shared data structures for the navigation policy engine.
//
// This package defines the vocabulary every domain package agrees on, so that
// the blocklist, resolver, interceptor and session coordinator can exchange
// values without importing each other.
//
// Core Types:
//   - Mode: Open or Curated browsing mode
//   - PartitionID, Partition: isolated storage scope bound to one mode
//   - ResourceType: kind of request issued by the rendering engine
//
// Request Types:
//   - EvaluateRequest, NavigateRequest, CommitRequest, ModeRequest: API bodies
//   - WSMessage: WebSocket communication
//
// Example Usage:
//
//	p := types.PartitionFor(types.ModeCurated)
//	fmt.Println(p.ID) // "curated"
package types
