package commerce

import "time"

// shopifyOrderUpdate is the body of PUT /orders/{id}.json
type shopifyOrderUpdate struct {
	Order shopifyOrderStatus `json:"order"`
}

type shopifyOrderStatus struct {
	ID                string  `json:"id"`
	FulfillmentStatus *string `json:"fulfillment_status"`
}

// shopifyInventoryLevel is the body of POST /inventory_levels/set.json
type shopifyInventoryLevel struct {
	LocationID      string `json:"location_id"`
	InventoryItemID string `json:"inventory_item_id"`
	Available       int    `json:"available"`
}

type shopifyOrderList struct {
	Orders []shopifyOrder `json:"orders"`
}

type shopifyOrder struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Note            string            `json:"note"`
	CreatedAt       time.Time         `json:"created_at"`
	Customer        *shopifyCustomer  `json:"customer"`
	ShippingAddress *shopifyAddress   `json:"shipping_address"`
	LineItems       []shopifyLineItem `json:"line_items"`
}

type shopifyCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type shopifyAddress struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

type shopifyLineItem struct {
	ProductID *int64 `json:"product_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type shopifyWebhookRequest struct {
	Webhook shopifyWebhookCreate `json:"webhook"`
}

type shopifyWebhookCreate struct {
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

type shopifyWebhookResponse struct {
	Webhook struct {
		ID        int64     `json:"id"`
		Topic     string    `json:"topic"`
		Address   string    `json:"address"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"webhook"`
}

type shopifyErrorResponse struct {
	Errors any `json:"errors"`
}
