package trade

// CreateTradeRequest represents the request body for offering a trade
type CreateTradeRequest struct {
	Message string `json:"message"`
}
