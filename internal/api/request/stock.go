package request

type CreateStockRequest struct {
	Ticker string `json:"ticker"`
}
