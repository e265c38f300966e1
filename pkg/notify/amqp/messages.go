package amqp

import (
	"encoding/json"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

const DataSavedType = "weekly_data.saved"

// DataSavedMessage announces a saved week. Consumers fetch the full week from the API.
type DataSavedMessage struct {
	Type           string    `json:"type"`
	WeekStart      string    `json:"week_start"`
	WeekNumber     int       `json:"week_number"`
	NetSalesActual api.Money `json:"net_sales_actual"`
	BudgetedSales  api.Money `json:"budgeted_sales"`
	SavedAt        time.Time `json:"saved_at"`
}

func NewDataSavedMessage(event domain.DataSavedEvent) *DataSavedMessage {
	return &DataSavedMessage{
		Type:           DataSavedType,
		WeekStart:      event.WeekStart.Format(domain.DateLayout),
		WeekNumber:     event.WeekNumber,
		NetSalesActual: api.NewMoney(event.NetSalesActual),
		BudgetedSales:  api.NewMoney(event.BudgetedSales),
		SavedAt:        event.SavedAt.UTC(),
	}
}

func (m *DataSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DataSavedMessageFromJSON(data []byte) (*DataSavedMessage, error) {
	var msg DataSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
