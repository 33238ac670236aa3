package domain

// Document is the whole persisted state of the JSON backend.
type Document struct {
	Users []*User `json:"users"`
	Books []*Book `json:"books"`
}

// EmptyDocument returns a document with non-nil, empty collections.
func EmptyDocument() *Document {
	return &Document{Users: []*User{}, Books: []*Book{}}
}

// Normalize replaces nil collections with empty ones.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []*User{}
	}
	if d.Books == nil {
		d.Books = []*Book{}
	}
}
