package models

import "time"

// SourceKind identifies what backs a Dataset.
type SourceKind string

const (
	SourceLive     SourceKind = "live"
	SourceSnapshot SourceKind = "snapshot"
)

// Dataset is a read-only, ordered collection of records from exactly one
// source. Callers must not mutate Records.
type Dataset struct {
	Source   SourceKind `json:"source"`
	LoadedAt time.Time  `json:"loaded_at"`
	Records  []Record   `json:"-"`
}

func NewDataset(source SourceKind, records []Record) *Dataset {
	if records == nil {
		records = []Record{}
	}
	return &Dataset{
		Source:   source,
		LoadedAt: time.Now(),
		Records:  records,
	}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}
