package types

// VATInvoice captures the data required to issue a full tax invoice.
type VATInvoice struct {
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	Address     string `json:"address,omitempty"`
}

// OrderNotes is the free-form note block forwarded with an order submission.
type OrderNotes struct {
	StoreMessage  string      `json:"store_message,omitempty"`
	VATInvoice    *VATInvoice `json:"vat_invoice,omitempty"`
	PaymentMethod string      `json:"payment_method,omitempty"`
}
