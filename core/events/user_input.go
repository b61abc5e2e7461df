package events

// KindUserUtterance identifies finalized user utterances.
const KindUserUtterance Kind = "user_input.utterance"

// UserUtterance carries the finalized utterance text for one listening phase.
type UserUtterance struct {
	Base
	Text string
}

// NewUserUtterance creates a finalized utterance event.
func NewUserUtterance(text string) UserUtterance {
	return UserUtterance{Base: NewBase(KindUserUtterance), Text: text}
}
