package dto

type AdjustStockInput struct {
	VariantID      string
	QuantityChange int
	Reason         string
	ReferenceID    string
	ReferenceType  string
	UserID         string
}
