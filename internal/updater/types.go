package updater

import "time"

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "smazurov/onair"

// Info describes the latest release relative to the running binary.
type Info struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
}

// Options configures an Updater.
type Options struct {
	Repository string // GitHub repo slug, e.g. "smazurov/onair"
	Prerelease bool
	// BackupDir holds the previous binary. Defaults to ~/.cache/onair/backup.
	BackupDir string
}
