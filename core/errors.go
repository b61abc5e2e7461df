package orchestration

import "errors"

// ErrNoAssistant is returned by [Orchestrator.Start] when no assistant (or
// model) identifier was supplied. Starting cannot proceed without one.
var ErrNoAssistant = errors.New("no assistant selected")

// errEmptyUtterance marks a listening phase that produced no speech. It is
// control flow, not a fault: the loop resumes listening.
var errEmptyUtterance = errors.New("empty utterance")

// apologyMessage is spoken and recorded in place of the assistant reply when
// a single turn fails, so one bad turn never ends the session.
const apologyMessage = "I'm sorry, I ran into a problem answering that. Could you try again?"
