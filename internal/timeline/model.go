package timeline

import "time"

// Kind classifies an imported media file.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
	KindOther Kind = "other"
)

// IsTimeBased reports whether media of this kind has an intrinsic duration.
func (k Kind) IsTimeBased() bool {
	return k == KindVideo || k == KindAudio
}

// IsVisual reports whether media of this kind has pixel dimensions.
func (k Kind) IsVisual() bool {
	return k == KindVideo || k == KindImage
}

// TrackType is the media lane a track holds.
type TrackType string

const (
	TrackVideo TrackType = "video"
	TrackAudio TrackType = "audio"
)

// Valid reports whether t is a known track type.
func (t TrackType) Valid() bool {
	return t == TrackVideo || t == TrackAudio
}

// Defaults applied by the backend when a request leaves them out.
const (
	DefaultFrameRate        = 30
	DefaultResolutionWidth  = 1920
	DefaultResolutionHeight = 1080

	// DefaultStillDurationMs is the clip length given to assets with no
	// intrinsic duration, such as still images.
	DefaultStillDurationMs = 5000
)

// Project is the root of the entity graph. It owns assets and tracks.
type Project struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	DurationMs       int64     `json:"duration_ms"`
	FrameRate        int64     `json:"frame_rate"`
	ResolutionWidth  int64     `json:"resolution_width"`
	ResolutionHeight int64     `json:"resolution_height"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewProject holds the client-supplied fields of a project creation request.
// Zero values for the optional fields mean "use the backend default".
type NewProject struct {
	Name             string
	FrameRate        int64
	ResolutionWidth  int64
	ResolutionHeight int64
}

// Asset is an imported media file registered against a project.
type Asset struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	FilePath      string    `json:"file_path"`
	Kind          Kind      `json:"asset_type"`
	DurationMs    *int64    `json:"duration_ms,omitempty"`
	Width         *int64    `json:"width,omitempty"`
	Height        *int64    `json:"height,omitempty"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ImportedAt    time.Time `json:"imported_at"`
}

// NewAsset is an addAsset request.
type NewAsset struct {
	ProjectID     int64
	FilePath      string
	Kind          Kind
	DurationMs    *int64
	Width         *int64
	Height        *int64
	FileSizeBytes int64
}

// Track is an ordered lane within a project.
type Track struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	TrackType  TrackType `json:"track_type"`
	OrderIndex int64     `json:"order_index"`
	IsLocked   bool      `json:"is_locked"`
	IsMuted    bool      `json:"is_muted"`
}

// Clip is a time-bounded placement of one asset on one track.
type Clip struct {
	ID                 int64   `json:"id"`
	TrackID            int64   `json:"track_id"`
	AssetID            int64   `json:"asset_id"`
	StartMs            int64   `json:"start_time_ms"`
	DurationMs         int64   `json:"duration_ms"`
	AssetStartOffsetMs int64   `json:"asset_start_offset_ms"`
	AssetEndOffsetMs   int64   `json:"asset_end_offset_ms"`
	Volume             float64 `json:"volume"`
	IsMuted            bool    `json:"is_muted"`
}

// EndMs returns the exclusive end of the clip's interval.
func (c Clip) EndMs() int64 {
	return c.StartMs + c.DurationMs
}

// TrackWithClip is the result of the atomic track+clip commit.
type TrackWithClip struct {
	Track Track `json:"track"`
	Clip  Clip  `json:"clip"`
}

// MediaInfo is the result of probing a file on disk.
type MediaInfo struct {
	Kind       Kind
	DurationMs *int64
	Width      *int64
	Height     *int64
	SizeBytes  int64
}
