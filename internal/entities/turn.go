package entities

// Role identifies the speaker of a Turn.
type Role uint8

const (
	RoleSystem Role = iota + 1
	RoleAssistant
	RoleUser
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleAssistant:
		return "assistant"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r >= RoleSystem && r <= RoleUser
}

// Turn is one message in a conversation history.
type Turn struct {
	Role    Role
	Content string
}

func SystemTurn(content string) Turn    { return Turn{Role: RoleSystem, Content: content} }
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }
func UserTurn(content string) Turn      { return Turn{Role: RoleUser, Content: content} }
