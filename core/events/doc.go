// Package events defines the typed voice session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session_state.*
//   - capture.*
//   - user_input.*
//   - assistant_response.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Fragment: append-only text piece emitted in stream order.
//   - Completed: terminal immutable text/state for the current stream/turn.
//   - Level: point-in-time measurement that is superseded by the next one.
//
// session_state events
//
//   - StateChanged (session_state.changed): the session state machine moved;
//     carries the previous and current state names and, for transitions into
//     the error state, a human-readable message.
//
// capture events
//
//   - CaptureAudioLevel (capture.audio_level): normalized RMS level of the
//     most recent capture buffer, for UI metering.
//   - CaptureSilence (capture.silence): continuous silence observed so far,
//     reset whenever voiced audio arrives.
//
// user_input events
//
//   - UserUtterance (user_input.utterance): the finalized utterance text for
//     one listening phase.
//
// assistant_response events
//
//   - ResponseFragment (assistant_response.fragment): streamed response text
//     fragment, in arrival order.
//   - ResponseCompleted (assistant_response.completed): response stream is
//     complete; carries the final assembled text and the conversation title
//     if one was derived.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a turn began processing a non-empty
//     utterance.
//   - TurnCompleted (turn_state.completed): the turn finished its full
//     Listen→Process→Speak cycle.
//   - TurnBargedIn (turn_state.barged_in): playback was interrupted by new
//     user speech; the session returns to listening.
package events
