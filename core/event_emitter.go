package orchestration

import "github.com/quillchat/voice-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(callbacks callbackOptions) eventEmitter {
	return func(event events.Event) {
		if callbacks.onEvent != nil {
			callbacks.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.StateChanged:
			if callbacks.onStateChanged != nil {
				callbacks.onStateChanged(State(typedEvent.Previous), State(typedEvent.Current), typedEvent.Message)
			}
		case events.CaptureAudioLevel:
			if callbacks.onAudioLevel != nil {
				callbacks.onAudioLevel(typedEvent.Level)
			}
		case events.CaptureSilence:
			if callbacks.onSilence != nil {
				callbacks.onSilence(typedEvent.Duration)
			}
		case events.UserUtterance:
			if callbacks.onUtterance != nil {
				callbacks.onUtterance(typedEvent.Text)
			}
		case events.ResponseFragment:
			if callbacks.onResponseFragment != nil {
				callbacks.onResponseFragment(typedEvent.Text)
			}
		case events.ResponseCompleted:
			if callbacks.onResponseCompleted != nil {
				callbacks.onResponseCompleted(typedEvent.Text, typedEvent.Title)
			}
		case events.TurnStarted:
			if callbacks.onTurnStarted != nil {
				callbacks.onTurnStarted(typedEvent.ID)
			}
		case events.TurnCompleted:
			if callbacks.onTurnCompleted != nil {
				callbacks.onTurnCompleted(typedEvent.ID)
			}
		case events.TurnBargedIn:
			if callbacks.onBargeIn != nil {
				callbacks.onBargeIn(typedEvent.ID)
			}
		}
	}
}
