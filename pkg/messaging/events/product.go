package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/kasir/pkg/messaging"
)

// ProductEvent describes a committed change to the product catalogue.
// Price and Cost are decimal strings so no precision is lost on the wire.
// Carrier holds the propagated trace context.
type ProductEvent struct {
	EventID    string            `json:"event_id"`
	Carrier    map[string]string `json:"carrier,omitempty"`
	Kind       string            `json:"kind"`
	ProductID  int64             `json:"product_id"`
	Name       string            `json:"name,omitempty"`
	Price      string            `json:"price,omitempty"`
	Cost       string            `json:"cost,omitempty"`
	Stock      int               `json:"stock"`
	Category   string            `json:"category,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

func (e ProductEvent) ID() string {
	return e.EventID
}

func (e ProductEvent) Subject() string {
	switch e.Kind {
	case KindCreated:
		return messaging.ProductsCreatedSubject
	case KindDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsUpdatedSubject
	}
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
