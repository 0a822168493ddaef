package helper

import "time"

// Default network ports, matching spec §6.
const (
	DefaultNameNodePort     = 5000
	DefaultStorageClientPort = 7000
	DefaultStorageControlPort = 6000
)

// Timing constants governing heartbeats, failure detection, and sentence
// lock leases (spec §4.4, §4.5, §5).
const (
	HeartbeatInterval  = 30 * time.Second
	FailureScanInterval = 10 * time.Second
	FailureThreshold   = 30 * time.Second
	ControlTimeout     = 5 * time.Second

	SentenceLockLeaseTTL = 5 * time.Minute

	ConnectRetryAttempts = 3
	ConnectRetryDelay    = 2 * time.Second
	HeartbeatBackoff     = 5 * time.Second
)

// Default tunables for content and cache subsystems (spec §4.1, §4.9, §4.10).
const (
	DefaultPayloadLimit = 8192
	DefaultCacheCapacity = 100

	MaxSentencesPerFile = 10000
	MaxSentenceLength   = 4096
	MaxWordsPerSentence  = 1000
	MaxWordLength        = 256

	DefaultACLCapacity = 256
)

// SentenceTerminators is the set of characters that end a sentence (spec
// GLOSSARY: "Sentence").
const SentenceTerminators = ".!?"
