package dto

type UploadInput struct {
	ActorID      string
	OriginalName string
	Data         []byte
	Folder       string
	AltText      string
}

type UpdateInput struct {
	ActorID string
	ID      string
	AltText string
	Folder  string
}
