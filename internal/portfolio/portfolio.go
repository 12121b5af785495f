// Package portfolio generates the synthetic entities that time series are
// produced against: storm events, Thames flood gauges, residential
// properties and the mortgages secured on them. Identifiers are minted
// fresh per run; every other value is a deterministic function of the
// entity index and the run anchor, so two runs over the same inputs differ
// only in their IDs.
package portfolio

import "github.com/google/uuid"

// newID mints an entity identifier: the prefix plus the first hex group of
// a fresh UUID.
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
