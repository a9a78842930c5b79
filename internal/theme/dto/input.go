package dto

import "encoding/json"

type ThemeInput struct {
	ActorID     string
	ID          string
	Name        string
	Description string
	Settings    json.RawMessage
}
