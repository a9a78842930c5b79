package dto

type FlagInput struct {
	ActorID     string
	Key         string
	Description string
	Enabled     bool
	IsPremium   bool
}
