package dto

type SubscriberFilters struct {
	Status   string
	Query    string
	Page     int
	PageSize int
}

type SubscribeInput struct {
	Email  string
	Source string
}
