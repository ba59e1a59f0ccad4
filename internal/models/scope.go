package models

// Scope narrows an upload lookup. The zero value matches every live record.
type Scope struct {
	// Owned restricts results to records created by Owner. A nil Owner
	// matches anonymous uploads only.
	Owned bool
	Owner *string
}

// OwnedBy returns a scope limited to the given actor.
func OwnedBy(actor *string) Scope {
	return Scope{Owned: true, Owner: actor}
}
