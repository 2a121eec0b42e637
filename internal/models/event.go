package models

import "time"

// ProductEventType names a product lifecycle transition.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product mutation has been committed.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"product_id"`
	SKU        string           `json:"sku"`
	OwnerID    string           `json:"owner_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Product    *Product         `json:"product,omitempty"` // nil for deletions
}

// NewProductEvent builds an event for the given product.
func NewProductEvent(eventType ProductEventType, product *Product) ProductEvent {
	event := ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		SKU:        product.SKU,
		OwnerID:    product.CreatedBy,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != ProductDeleted {
		snapshot := *product
		event.Product = &snapshot
	}
	return event
}
