package synology

import "strconv"

// Task statuses reported by the Download Station API.
const (
	StatusWaiting            = "waiting"
	StatusDownloading        = "downloading"
	StatusPaused             = "paused"
	StatusFinishing          = "finishing"
	StatusFinished           = "finished"
	StatusHashChecking       = "hash_checking"
	StatusSeeding            = "seeding"
	StatusFilehostingWaiting = "filehosting_waiting"
	StatusExtracting         = "extracting"
	StatusError              = "error"
)

// Task is one download job as reported by the remote API. Tasks are
// snapshots; the client never mutates them.
type Task struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Size       int64           `json:"size"`
	Status     string          `json:"status"`
	Type       string          `json:"type"` // bt, nzb, http, ftp, emule
	Username   string          `json:"username"`
	Additional *TaskAdditional `json:"additional,omitempty"`
}

// TaskAdditional carries the optional detail/transfer blocks requested
// via the "additional" list parameter.
type TaskAdditional struct {
	Detail   *TaskDetail   `json:"detail,omitempty"`
	Transfer *TaskTransfer `json:"transfer,omitempty"`
}

// TaskDetail holds per-task metadata. Timestamps are Unix seconds.
type TaskDetail struct {
	CreateTime       int64  `json:"create_time"`
	StartedTime      int64  `json:"started_time"`
	CompletedTime    int64  `json:"completed_time"`
	Destination      string `json:"destination"`
	URI              string `json:"uri"`
	ConnectedPeers   int    `json:"connected_peers"`
	ConnectedSeeders int    `json:"connected_seeders"`
}

// TaskTransfer holds byte counters and speeds. The API encodes the
// counters as decimal strings.
type TaskTransfer struct {
	SizeDownloaded string `json:"size_downloaded"`
	SizeUploaded   string `json:"size_uploaded"`
	SpeedDownload  int64  `json:"speed_download"`
	SpeedUpload    int64  `json:"speed_upload"`
}

// SizeUploaded returns the uploaded byte count, or 0 when the transfer
// block is absent or unparseable.
func (t Task) SizeUploaded() int64 {
	if t.Additional == nil || t.Additional.Transfer == nil {
		return 0
	}
	n, err := strconv.ParseInt(t.Additional.Transfer.SizeUploaded, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SizeDownloaded returns the downloaded byte count, or 0 when absent.
func (t Task) SizeDownloaded() int64 {
	if t.Additional == nil || t.Additional.Transfer == nil {
		return 0
	}
	n, err := strconv.ParseInt(t.Additional.Transfer.SizeDownloaded, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// CompletedTime returns the completion timestamp in Unix seconds, or 0
// when the detail block is absent.
func (t Task) CompletedTime() int64 {
	if t.Additional == nil || t.Additional.Detail == nil {
		return 0
	}
	return t.Additional.Detail.CompletedTime
}

// Destination returns the remote-reported download destination, or ""
// when the detail block is absent.
func (t Task) Destination() string {
	if t.Additional == nil || t.Additional.Detail == nil {
		return ""
	}
	return t.Additional.Detail.Destination
}

// APIVersionRange is one family's negotiated version range from SYNO.API.Info.
type APIVersionRange struct {
	MinVersion int    `json:"minVersion"`
	Version    int    `json:"version"`
	MaxVersion int    `json:"maxVersion"`
	Path       string `json:"path"`
}

// Capabilities maps API family name to its version info. Fetched once
// per client lifetime and immutable afterwards.
type Capabilities map[string]APIVersionRange

// MaxVersion returns the highest supported version for the named API
// family as a string parameter, falling back to def when the family is
// unknown.
func (c Capabilities) MaxVersion(api, def string) string {
	info, ok := c[api]
	if !ok || info.MaxVersion == 0 {
		return def
	}
	return strconv.Itoa(info.MaxVersion)
}

// DeleteResult is the per-id outcome of a delete call. Error 0 means
// the task was deleted.
type DeleteResult struct {
	ID    string `json:"id"`
	Error int    `json:"error"`
}

// OK reports whether the deletion succeeded remotely.
func (r DeleteResult) OK() bool {
	return r.Error == 0
}
