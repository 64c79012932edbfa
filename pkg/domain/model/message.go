package model

import (
	"time"

	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Message represents a received financial message (MT format).
// Messages are read-only inputs for the investigation lifecycle once stored.
type Message struct {
	ID               types.MessageID
	WireID           string // external message identifier, e.g. "MT-1712345678"
	MessageType      string // "MT" or "MX"
	Content          string
	ConvertedContent string // MX rendition if a conversion was performed
	Attributes       map[string]string
	ProcessingTime   float64 // seconds spent processing
	ProcessedAt      *time.Time
	IsBulk           bool
	CreatedAt        time.Time
}
