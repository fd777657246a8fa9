package model

// BackupVersion tags every snapshot this service writes.
const BackupVersion = "1.0"

// Snapshot is a full dump of every persisted key.  Values are kept as the
// raw strings found in the store so the snapshot stays independent of the
// booking and profile schemas.
type Snapshot struct {
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Data      map[string]string `json:"data"`
}
