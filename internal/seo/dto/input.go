package dto

type MetadataInput struct {
	ActorID         string
	EntityType      string
	EntityID        string
	MetaTitle       string
	MetaDescription string
	CanonicalURL    string
	OGImage         string
	NoIndex         bool
}
