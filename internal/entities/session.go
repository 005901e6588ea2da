package entities

// Session is one user's conversation state.
//
// While Active, History starts with a system turn followed by the assistant
// greeting. While inactive, History is empty.
type Session struct {
	UserID  string
	Active  bool
	History []Turn
}

// NewSession returns the initial inactive session for a user.
func NewSession(userID string) Session {
	return Session{UserID: userID}
}

// Clone returns a copy that shares no history backing array with s.
func (s Session) Clone() Session {
	c := s
	if s.History != nil {
		c.History = make([]Turn, len(s.History))
		copy(c.History, s.History)
	}
	return c
}

// Reset puts the session back into its initial inactive state.
func (s *Session) Reset() {
	s.Active = false
	s.History = nil
}
