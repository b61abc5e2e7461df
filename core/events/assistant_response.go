package events

const (
	// KindResponseFragment identifies streamed response text fragments.
	KindResponseFragment Kind = "assistant_response.fragment"
	// KindResponseCompleted identifies the completed response.
	KindResponseCompleted Kind = "assistant_response.completed"
)

// ResponseFragment carries one streamed response text fragment, emitted in
// arrival order.
type ResponseFragment struct {
	Base
	Text string
}

// NewResponseFragment creates a response fragment event.
func NewResponseFragment(text string) ResponseFragment {
	return ResponseFragment{Base: NewBase(KindResponseFragment), Text: text}
}

// ResponseCompleted carries the final assembled response text. Title is the
// conversation title derived for this turn, or empty if the conversation was
// already titled.
type ResponseCompleted struct {
	Base
	Text  string
	Title string
}

// NewResponseCompleted creates a completed response event.
func NewResponseCompleted(text, title string) ResponseCompleted {
	return ResponseCompleted{Base: NewBase(KindResponseCompleted), Text: text, Title: title}
}
