package domain

import "errors"

var (
	// ErrChapterNotFound indicates the requested chapter is not in the corpus.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrNoQuestions is returned when a quiz is started on a chapter without questions.
	ErrNoQuestions = errors.New("chapter has no quiz questions")
	// ErrEmptyStudentName is returned when a quiz is started without a name.
	ErrEmptyStudentName = errors.New("student name must not be empty")
	// ErrAttemptInProgress is returned when an attempt is already live.
	ErrAttemptInProgress = errors.New("a quiz attempt is already in progress")
	// ErrNoActiveAttempt is returned for operations outside a live attempt.
	ErrNoActiveAttempt = errors.New("no active quiz attempt")
	// ErrAttemptFinished is returned for operations on a finished attempt.
	ErrAttemptFinished = errors.New("quiz attempt already finished")
	// ErrAlreadyAnswered rejects a second submission for the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotAnswered rejects advancing past an unanswered question.
	ErrNotAnswered = errors.New("current question not answered yet")
	// ErrInvalidOption indicates the selected option index is out of range.
	ErrInvalidOption = errors.New("selected option out of range")
	// ErrInvalidScore indicates a quiz score outside [0,100].
	ErrInvalidScore = errors.New("quiz score must be between 0 and 100")
	// ErrInvalidTheme indicates a theme value other than light or dark.
	ErrInvalidTheme = errors.New("theme must be light or dark")
)
