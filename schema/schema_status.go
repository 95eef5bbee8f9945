package schema

import "time"

// GraphStatus represents the status of the graph store.
type GraphStatus struct {
	Backend       string `json:"backend"`
	Connected     bool   `json:"connected"`
	TopicCount    int    `json:"topic_count"`
	ArticleCount  int    `json:"article_count"`
	EdgeCount     int    `json:"edge_count"`
	ArchivedEdges int    `json:"archived_edges"`
}

// AuditStatus represents the status of the audit store.
type AuditStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalEvents    int64            `json:"total_events"`
	TotalSweeps    int64            `json:"total_sweeps"`
	LastEventTime  time.Time        `json:"last_event_time"`
	OldestSweepRun time.Time        `json:"oldest_sweep_run"`
	LastSweepID    string           `json:"last_sweep_id"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}
