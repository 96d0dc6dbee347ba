package models

import "time"

// RecentFile represents a previously opened presentation
type RecentFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastOpened time.Time `json:"lastOpened"`
	Path       string    `json:"path,omitempty"`
	ConfigPath string    `json:"configPath,omitempty"`
	ConfigName string    `json:"configName,omitempty"`
}

// Settings represents user preferences stored next to the history
type Settings struct {
	SaveHistory bool `json:"saveHistory"`
}
