// Package params collects the sync protocol's tunable constants and its
// small feature-activation table, adapted from the teacher's EIP-gate
// pattern (params/eips.go enables a numbered protocol change against a
// GasTable/Jumptable; here a numbered protocol revision enables a change
// against the running Config) to the much smaller surface this protocol
// needs.
package params

import "time"

// Defaults mirror spec.md §4.7's design defaults.
const (
	SyncResponseFreshness      = 1 * time.Second
	SyncInterestReexpress      = 4 * time.Second
	DefaultRecoveryRetransmit  = 200 * time.Millisecond
	RetryTimes                 = 4
	Pipeline                   = 3
	DefaultInterestLifetime    = 4 * time.Second
	QuiescenceToSnapshotDelay  = 5 * time.Second
	PITCleanPeriod             = 4 * time.Second
	PITEntryLifetime           = 4 * time.Second
	SnapshotDedupTTL           = 10 * time.Second
	RecoveryBackoffCap         = 100 * time.Second
	SyncProcessingWaitMin      = 200 * time.Millisecond
	SyncProcessingWaitMax      = 1000 * time.Millisecond
	JitterMin                  = 100 * time.Millisecond
	JitterMax                  = 500 * time.Millisecond
	FirstSyncInterestDelay     = 100 * time.Millisecond
)

// Config is the mutable view of protocol timing a running Engine reads.
// A fresh Config equals the Defaults above; revisions mutate it in place,
// the way Enable1884 mutates a GasTable.
type Config struct {
	SyncInterestReexpress     time.Duration
	RecoveryRetransmitInitial time.Duration
	RetryTimes                int
	Pipeline                  int
	DefaultInterestLifetime   time.Duration
}

// DefaultConfig returns a Config carrying the package-level defaults.
func DefaultConfig() Config {
	return Config{
		SyncInterestReexpress:     SyncInterestReexpress,
		RecoveryRetransmitInitial: DefaultRecoveryRetransmit,
		RetryTimes:                RetryTimes,
		Pipeline:                  Pipeline,
		DefaultInterestLifetime:   DefaultInterestLifetime,
	}
}

// Revision identifies a numbered protocol behavior change, following the
// teacher's EIP-number convention.
type Revision int

const (
	// RevisionWidePipeline doubles the fetch pipeline width, for peers on
	// high-bandwidth links that would otherwise bottleneck on the
	// default window of 3 outstanding fetches per creator.
	RevisionWidePipeline Revision = 9001
)

// Enable applies a named revision to cfg in place.
func Enable(cfg *Config, rev Revision) {
	switch rev {
	case RevisionWidePipeline:
		cfg.Pipeline *= 2
	}
}
