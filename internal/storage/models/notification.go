// internal/storage/models/notification.go
package models

import "time"

// Notification is one entry of the launchpad notification log.
type Notification struct {
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	Token      string            `json:"token,omitempty"`
	Time       time.Time         `json:"time"`
	Attributes map[string]string `json:"attributes"`
}
