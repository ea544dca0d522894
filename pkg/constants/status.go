package constants

// Video lifecycle statuses persisted on the record.
const (
	StatusPending    = "pending"
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusBlocked    = "blocked"
	StatusFailed     = "failed"
)

const StatusOK = "ok"

// Retry hints returned to clients with every error response.
const (
	RetrySame            = "same"
	RetryCorrectedOffset = "corrected_offset"
	RetryTerminal        = "terminal"
	RetryNone            = "none"
)

// Provider identifies where the video bytes live.
type Provider int

const (
	ProviderLocal Provider = iota
	ProviderRemoteA
	ProviderRemoteB
)

func (p Provider) IsRemote() bool {
	return p == ProviderRemoteA || p == ProviderRemoteB
}

func (p Provider) Valid() bool {
	return p >= ProviderLocal && p <= ProviderRemoteB
}

// Staging layout file names under uploads/{videoId}/.
const (
	OriginalFileName = "original"
	PreviewFileName  = "preview"
)

// Blob layout under videos/{videoId}/.
const (
	VideoKeyPrefix     = "videos"
	MasterPlaylistName = "master.m3u8"
	RungPlaylistName   = "playlist.m3u8"
	CueSheetName       = "thumbnails.vtt"
)
