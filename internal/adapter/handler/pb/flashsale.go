// Package pb holds the FlashSale gRPC service definition: messages, the
// service descriptor and a client. Messages are encoded with the JSON codec
// registered in codec.go.
package pb

type ExposeRequest struct {
	ItemId int64 `json:"item_id"`
}

type ExposeResponse struct {
	ItemId int64  `json:"item_id"`
	State  string `json:"state"`
	Token  string `json:"token,omitempty"`
	// Millisecond timestamps, set when the window is not open.
	Now       int64 `json:"now,omitempty"`
	StartTime int64 `json:"start_time,omitempty"`
	EndTime   int64 `json:"end_time,omitempty"`
}

type PurchaseRequest struct {
	ItemId     int64  `json:"item_id"`
	CustomerId string `json:"customer_id"`
	Token      string `json:"token"`
}

type PurchaseResponse struct {
	Success   bool   `json:"success"`
	State     int32  `json:"state"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

type GetItemRequest struct {
	ItemId int64 `json:"item_id"`
}

type Item struct {
	Id                int64  `json:"id"`
	Name              string `json:"name"`
	RemainingQuantity int64  `json:"remaining_quantity"`
	StartTime         int64  `json:"start_time"`
	EndTime           int64  `json:"end_time"`
}

func (x *ExposeRequest) GetItemId() int64 {
	if x != nil {
		return x.ItemId
	}
	return 0
}

func (x *PurchaseRequest) GetItemId() int64 {
	if x != nil {
		return x.ItemId
	}
	return 0
}

func (x *PurchaseRequest) GetCustomerId() string {
	if x != nil {
		return x.CustomerId
	}
	return ""
}

func (x *PurchaseRequest) GetToken() string {
	if x != nil {
		return x.Token
	}
	return ""
}

func (x *GetItemRequest) GetItemId() int64 {
	if x != nil {
		return x.ItemId
	}
	return 0
}
