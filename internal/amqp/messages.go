package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/ledger"
)

// Alert message kinds on the wire.
const (
	KindCategoryAlert    = "category_alert"
	KindTotalBudgetAlert = "total_budget_alert"
)

// AlertMessage is the single wire envelope for budget alerts. Kind selects
// which fields are meaningful: category alerts carry CategoryID and Name,
// total-budget alerts leave them zero.
type AlertMessage struct {
	Kind        string    `json:"kind"`
	CategoryID  uuid.UUID `json:"category_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Level       string    `json:"level"`
	PercentUsed int       `json:"percent_used"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCategoryAlertMessage(a ledger.CategoryAlert) *AlertMessage {
	return &AlertMessage{
		Kind:        KindCategoryAlert,
		CategoryID:  a.CategoryID,
		Name:        a.Name,
		Level:       string(a.Level),
		PercentUsed: a.PercentUsed,
		Timestamp:   time.Now(),
	}
}

func NewTotalBudgetAlertMessage(a ledger.TotalBudgetAlert) *AlertMessage {
	return &AlertMessage{
		Kind:        KindTotalBudgetAlert,
		Level:       string(a.Level),
		PercentUsed: a.PercentUsed,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON creates a message from JSON bytes
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
