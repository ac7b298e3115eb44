// Package kernel contains shared value objects used across all domain
// aggregates: UUID identifiers and WGS84 geo points. Value objects here are
// immutable, validated at construction, and safe for concurrent use.
package kernel
