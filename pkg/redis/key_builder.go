package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyElectionResults caches the projected results board of one election.
func (kb *KeyBuilder) KeyElectionResults(electionID string) string {
	return kb.BuildKey(fmt.Sprintf("voting:election:%s:results", electionID))
}

// KeyElectionList caches the public election listing.
func (kb *KeyBuilder) KeyElectionList() string {
	return kb.BuildKey("voting:elections:all")
}

// KeyVoterGuard is the fast-path duplicate ballot guard for one
// (election, voter) pair.
func (kb *KeyBuilder) KeyVoterGuard(electionID, voterID string) string {
	return kb.BuildKey(fmt.Sprintf("voting:election:%s:voter:%s", electionID, voterID))
}
