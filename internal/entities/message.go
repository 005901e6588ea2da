package entities

// Message is one inbound chat message extracted from a provider webhook.
type Message struct {
	From     string // provider-specific user handle (phone number for WhatsApp)
	Content  string
	Platform string // e.g. "whatsapp"
}

// Response is what the relay decided to send back. Empty Content means send nothing.
type Response struct {
	To      string
	Content string
}
