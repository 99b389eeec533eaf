package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// SummaryResult is the result payload of a done ingest task
type SummaryResult struct {
	Overview     string            `json:"overview" validate:"required"`
	Categories   map[string]string `json:"categories"`
	Achievements []string          `json:"achievements"`
	Counts       map[string]int    `json:"counts" validate:"dive,gte=0"`
}

// Summary is the generated weekly summary, unique per (Username, Week)
type Summary struct {
	ID           types.SummaryID    `json:"id"`
	Username     string             `json:"username"`
	Week         types.Week         `json:"week"`
	RepositoryID types.RepositoryID `json:"repository_id"`
	TaskID       types.TaskID       `json:"task_id"`
	SummaryResult
	CreatedAt time.Time `json:"created_at"`
}

// ContextText renders the summary as grounding text for question answering
func (x *Summary) ContextText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary of %s for %s:\n%s", x.Username, x.Week, x.Overview)

	keys := make([]string, 0, len(x.Categories))
	for k := range x.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, x.Categories[k])
	}

	if len(x.Achievements) > 0 {
		b.WriteString("\nAchievements:")
		for _, a := range x.Achievements {
			b.WriteString("\n- " + a)
		}
	}
	return b.String()
}

// SummaryRecord is the BigQuery row of an exported summary
type SummaryRecord struct {
	ID           string     `json:"id" bigquery:"id"`
	Username     string     `json:"username" bigquery:"username"`
	Week         string     `json:"week" bigquery:"week"`
	RepositoryID string     `json:"repository_id" bigquery:"repository_id"`
	TaskID       string     `json:"task_id" bigquery:"task_id"`
	Overview     string     `json:"overview" bigquery:"overview"`
	Categories   []KeyValue `json:"categories" bigquery:"categories"`
	Achievements []string   `json:"achievements" bigquery:"achievements"`
	Counts       []KeyCount `json:"counts" bigquery:"counts"`
	Timestamp    int64      `json:"timestamp" bigquery:"timestamp"`
}

type KeyValue struct {
	Key   string `json:"key" bigquery:"key"`
	Value string `json:"value" bigquery:"value"`
}

type KeyCount struct {
	Key   string `json:"key" bigquery:"key"`
	Count int64  `json:"count" bigquery:"count"`
}

func NewSummaryRecord(s *Summary) *SummaryRecord {
	record := &SummaryRecord{
		ID:           string(s.ID),
		Username:     s.Username,
		Week:         string(s.Week),
		RepositoryID: string(s.RepositoryID),
		TaskID:       string(s.TaskID),
		Overview:     s.Overview,
		Achievements: s.Achievements,
		Timestamp:    s.CreatedAt.UnixMicro(),
	}

	for k, v := range s.Categories {
		record.Categories = append(record.Categories, KeyValue{Key: k, Value: v})
	}
	sort.Slice(record.Categories, func(i, j int) bool { return record.Categories[i].Key < record.Categories[j].Key })

	for k, v := range s.Counts {
		record.Counts = append(record.Counts, KeyCount{Key: k, Count: int64(v)})
	}
	sort.Slice(record.Counts, func(i, j int) bool { return record.Counts[i].Key < record.Counts[j].Key })

	return record
}
