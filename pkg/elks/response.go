package elks

type SendResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Parts     int     `json:"parts"`
	Cost      float64 `json:"cost"`
	Estimated bool    `json:"estimated_cost,omitempty"`
}

type BalanceResponse struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type HistoryEntry struct {
	ID      string  `json:"id"`
	Status  string  `json:"status"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Message string  `json:"message"`
	Cost    float64 `json:"cost"`
	Created string  `json:"created"`
}

type HistoryResponse struct {
	Data []HistoryEntry `json:"data"`
}
