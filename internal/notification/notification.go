package notification

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("notification not found")
	ErrInvalid  = errors.New("invalid notification")
)

type Kind string

const (
	KindForceReturn Kind = "FORCE_RETURN"
	KindDueSoon     Kind = "DUE_SOON"
	KindOverdue     Kind = "OVERDUE"
)

// Payload is stored as JSONB next to the message text.
type Payload struct {
	RecordID    string           `json:"record_id"`
	BookID      string           `json:"book_id"`
	DueDate     time.Time        `json:"due_date"`
	AccruedFine *decimal.Decimal `json:"accrued_fine,omitempty"`
}

func (p Payload) Marshal() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(p)
}

func UnmarshalPayload(data []byte) (Payload, error) {
	var p Payload
	if len(data) == 0 {
		return p, nil
	}
	err := jsoniter.ConfigFastest.Unmarshal(data, &p)
	return p, err
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Payload   Payload   `json:"payload"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is what producers hand to the sink.
type Message struct {
	UserID  string
	Kind    Kind
	Text    string
	Payload Payload
}
