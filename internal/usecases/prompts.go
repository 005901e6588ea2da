package usecases

// Prompts holds the fixed texts the state machine uses.
type Prompts struct {
	System   string
	Greeting string
	Farewell string
	Apology  string
}

const (
	DefaultSystemPrompt = "You are a Lenskart specialist assistant. " +
		"You help users with eye tests, spectacle lenses, " +
		"frames, contact lenses, blue cut, power issues, " +
		"pricing guidance, and basic eye-care advice. " +
		"Keep responses friendly, short, and helpful. " +
		"Do NOT answer unrelated topics."
	DefaultGreeting = "Hi 👋 Welcome to Lenskart Support! How can I help you today with your eyes or eyewear?"
	DefaultFarewell = "👋 Conversation ended. Say *Hi* to start again."
	DefaultApology  = "Sorry 😕 I'm having trouble right now. Please try again."
)

func DefaultPrompts() Prompts {
	return Prompts{
		System:   DefaultSystemPrompt,
		Greeting: DefaultGreeting,
		Farewell: DefaultFarewell,
		Apology:  DefaultApology,
	}
}

// withDefaults fills any empty field from DefaultPrompts.
func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	if p.System == "" {
		p.System = d.System
	}
	if p.Greeting == "" {
		p.Greeting = d.Greeting
	}
	if p.Farewell == "" {
		p.Farewell = d.Farewell
	}
	if p.Apology == "" {
		p.Apology = d.Apology
	}
	return p
}
