package domain

// Quote is a normalized quotation from any quote source.
type Quote struct {
	Text   string
	Author string
}
