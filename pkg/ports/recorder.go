package ports

import "context"

// AnswerRecord is the opaque payload handed to the persistence layer when a
// state update captures a user answer. The exact downstream schema is owned
// by the collaborator.
type AnswerRecord struct {
	RunID     string
	JourneyID string
	ScreenID  string
	ElementID string
	Key       string
	Value     any
}

// AnswerRecorder receives answer/transcript side effects from the bridge.
// Implementations must tolerate duplicate records (dispatch is at-least-once
// from the recorder's point of view).
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, rec AnswerRecord) error
}

// AnswerRecorderFunc adapts a function to the AnswerRecorder interface.
type AnswerRecorderFunc func(ctx context.Context, rec AnswerRecord) error

// RecordAnswer implements AnswerRecorder.
func (f AnswerRecorderFunc) RecordAnswer(ctx context.Context, rec AnswerRecord) error {
	return f(ctx, rec)
}
