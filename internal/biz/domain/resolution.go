package domain

// ResolutionKind tags the outcome of contact resolution
type ResolutionKind int

const (
	ResolutionNotFound ResolutionKind = iota
	ResolutionFound
	ResolutionAmbiguous
)

// Resolution is the result of resolving a free-text name to contacts
type Resolution struct {
	Kind       ResolutionKind
	Contact    *Contact   // set when Kind == ResolutionFound
	Candidates []*Contact // set when Kind == ResolutionAmbiguous, at most 5
	AIAssisted bool       // the contact was picked by the language-model fallback
}

// Found builds a found resolution
func Found(c *Contact) *Resolution {
	return &Resolution{Kind: ResolutionFound, Contact: c}
}

// Ambiguous builds an ambiguous resolution
func Ambiguous(candidates []*Contact) *Resolution {
	return &Resolution{Kind: ResolutionAmbiguous, Candidates: candidates}
}

// NotFound builds a not-found resolution
func NotFound() *Resolution {
	return &Resolution{Kind: ResolutionNotFound}
}
