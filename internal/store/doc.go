// Package store provides durable storage for a field-kit data directory.
//
// Two storage concerns live behind one type. The event log
// (qdpi_events.jsonl) is append-only and is the sole source of historical
// truth; Append assigns each event a per-episode gapless sequence number
// starting at 1. The snapshot files (networks.jsonl, episodes.jsonl,
// items.jsonl, bonds.jsonl) are latest-write-wins: an update appends the
// full object as a new line and readers keep the last line per id.
//
// # Critical Patterns
//
//   - Single writer. One mutex covers every write; reads may run
//     concurrently with each other but never interleave with a write.
//   - Events are encoded with canonical JSON so identical events produce
//     identical bytes.
//   - A failed append surfaces as AppendError and the operation that
//     attempted it is abandoned. There is no rollback; partial progress
//     stays in the log and is closed by a *_failed event.
package store
