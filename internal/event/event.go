// Package event emits best-effort notifications about stored objects to a
// Kafka topic. Delivery is a side channel: nothing in this package can fail
// an upload that already wrote its bytes.
package event

// UploadEvent describes one successful object write. Field names are part of
// the topic's contract with downstream consumers.
type UploadEvent struct {
	EventID      string `json:"eventId"`
	EntryID      string `json:"entryId"`
	AssetID      string `json:"assetId"`
	Key          string `json:"key"`
	OriginalName string `json:"originalname"`
	UploadedAt   string `json:"uploadedAt"`
	URL          string `json:"url"`
}

// PublishStatus reports what happened to one publish attempt.
type PublishStatus int

const (
	// StatusDelivered means the broker acknowledged the message.
	StatusDelivered PublishStatus = iota
	// StatusSkipped means the notifier is disabled (broker never came up).
	StatusSkipped
	// StatusFailed means the send was attempted and lost; the failure has
	// already been logged and swallowed.
	StatusFailed
)

func (s PublishStatus) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
