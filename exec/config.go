package exec

// Config carries the tunables spec §6 names as collaborator configuration:
// MaxPageSize bounds the Sort & Pagination Normalizer's page size clamp,
// BatchFetchSize is the batch-load hint's default B (100), and
// NestedJoinDepthLimit carries a nested-path depth bound; the executor does
// not read it (relation.DetectNestedToOneRelationships takes its own
// maxDepth argument). TwoPhaseAlwaysOn is a debugging/testing escape hatch:
// it forces every query through the two-phase path regardless of the
// decision function.
type Config struct {
	MaxPageSize          int
	BatchFetchSize       int
	NestedJoinDepthLimit int
	TwoPhaseAlwaysOn     bool
}

// DefaultConfig mirrors spec §4.9/§4.8's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxPageSize:          1000,
		BatchFetchSize:       100,
		NestedJoinDepthLimit: 3,
	}
}
