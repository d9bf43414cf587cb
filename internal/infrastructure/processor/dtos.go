package processor

type generalBlock struct {
	ProjectID           int64  `json:"project_id"`
	PaymentID           string `json:"payment_id"`
	MerchantCallbackURL string `json:"merchant_callback_url,omitempty"`
}

type customerBlock struct {
	ID        string `json:"id"`
	IPAddress string `json:"ip_address"`
}

type paymentBlock struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type cardBlock struct {
	PAN        string `json:"pan"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	CardHolder string `json:"card_holder"`
	CVV        string `json:"cvv"`
}

type returnURLBlock struct {
	Success string `json:"success"`
	Decline string `json:"decline"`
	Return  string `json:"return"`
}

type customFieldsBlock struct {
	PaymentID string `json:"payment_id"`
	PayerID   string `json:"payer_id"`
	Credits   int    `json:"credits"`
}

type avsBlock struct {
	PostCode      string `json:"avs_post_code,omitempty"`
	StreetAddress string `json:"avs_street_address,omitempty"`
}

type saleRequest struct {
	General      generalBlock      `json:"general"`
	Customer     customerBlock     `json:"customer"`
	Payment      paymentBlock      `json:"payment"`
	Card         cardBlock         `json:"card"`
	ReturnURL    returnURLBlock    `json:"return_url"`
	CustomFields customFieldsBlock `json:"custom_fields"`
	AVS          *avsBlock         `json:"avs_data,omitempty"`
}

type threeDSResultRequest struct {
	General generalBlock `json:"general"`
	PaRes   string       `json:"pares"`
	MD      string       `json:"md"`
}

type threeDSCheckRequest struct {
	General             generalBlock `json:"general"`
	CompletionIndicator string       `json:"threeds_completion_indicator"`
}

type statusRequest struct {
	General generalBlock `json:"general"`
}
