package dto

type CreateReviewInput struct {
	UserID    string
	ProductID string
	Rating    int
	Title     string
	Body      string
}

type ModerateInput struct {
	ActorID string
	ID      string
	Status  string
}
