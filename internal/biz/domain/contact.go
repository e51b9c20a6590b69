package domain

// Contact represents a person the bot can target with a scheduled message
type Contact struct {
	CardID    string // store-assigned identifier
	UserID    string // messaging-channel user ID, empty for manually entered contacts
	Name      string // canonical display name (the card title)
	LineName  string // name as seen from the messaging channel
	CreatedAt string // ISO-8601 creation timestamp
}

// HasUserID reports whether the contact is reachable on the messaging channel
func (c *Contact) HasUserID() bool {
	return c.UserID != ""
}

// DisplayName returns the best name for display
func (c *Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.LineName
}
