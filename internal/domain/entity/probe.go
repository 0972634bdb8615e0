package entity

import "time"

// ProbeResult is the outcome of asking a network endpoint for its chain id.
type ProbeResult struct {
	Network         string        `json:"network"`
	URL             string        `json:"url"`
	ExpectedChainID uint64        `json:"expectedChainId,omitempty"`
	ReportedChainID uint64        `json:"reportedChainId,omitempty"`
	BlockNumber     uint64        `json:"blockNumber,omitempty"`
	Latency         time.Duration `json:"latency"`
	OK              bool          `json:"ok"`
	Error           string        `json:"error,omitempty"`
	CheckedAt       time.Time     `json:"checkedAt"`
	Cached          bool          `json:"cached"`
}
