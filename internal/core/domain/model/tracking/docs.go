// Package tracking provides the domain model for courier location reports.
//
// A Ping is an immutable, append-only location sample tied to an assignment.
// The current location of an assignment is derived, never stored: it is the
// ping with the greatest device timestamp, with the ping id breaking ties.
// Reports are expected to arrive out of order and are never mutated after
// ingestion.
package tracking
