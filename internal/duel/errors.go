package duel

import "errors"

var (
	// ErrDuelNotFound is returned for an unknown duel id.
	ErrDuelNotFound = errors.New("duel not found")
	// ErrInsufficientQuestions aborts creation when the filtered pool is
	// smaller than the requested count; no partial duel is created.
	ErrInsufficientQuestions = errors.New("not enough questions for the duel")
	// ErrAlreadyJoined is returned when the opponent slot is taken.
	ErrAlreadyJoined = errors.New("duel already has an opponent")
	// ErrSelfJoin is returned when the challenger tries to join their own duel.
	ErrSelfJoin = errors.New("challenger cannot join their own duel")
	// ErrAlreadySubmitted is returned on a second score submission.
	ErrAlreadySubmitted = errors.New("score already submitted")
	// ErrNotParticipant is returned when the caller is in neither seat.
	ErrNotParticipant = errors.New("user is not part of this duel")
	// ErrScoreMismatch is returned in strict mode when the submitted score
	// does not match the score recomputed from the answer records.
	ErrScoreMismatch = errors.New("submitted score does not match answers")
)
