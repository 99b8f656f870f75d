// Package qdpi defines the typed event model for the Field-Kit event log.
//
// Every mutation in the system is recorded as a QDPIEvent with a name drawn
// from a closed, canonical set. Events are immutable once appended and are
// totally ordered within an episode by a gapless seq starting at 1.
//
// # Critical Patterns
//
// Tagged refs: the open "refs" mapping on the wire is built exclusively from
// typed Payload variants, one per canonical event name. Each variant carries
// its required fields as struct members, so a malformed credits.delta (missing
// delta, balance_after, or reason) is a compile error, not a runtime surprise.
//
// Fixed tag and direction: each canonical name has exactly one QDPI tag
// (Q/M/D/H) and one direction (user→field or system→field), supplied by the
// payload type rather than by callers.
//
// Canonical serialization: MarshalCanonical produces a deterministic byte
// form (sorted keys, NFC-normalized strings, no HTML escaping) used for the
// persisted event log and golden traces.
package qdpi
