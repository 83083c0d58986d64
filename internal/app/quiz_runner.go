package app

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"pancasila-learning-service/internal/domain"
)

// ChapterRepository loads chapter content (from the in-memory store, a
// Redis-backed cache, etc).
type ChapterRepository interface {
	GetChapter(ctx context.Context, chapterID string) (domain.Chapter, error)
}

// ScoreRecorder persists the final percentage of a completed attempt.
type ScoreRecorder interface {
	RecordQuizScore(ctx context.Context, chapterID string, score int) error
}

// Certifier turns a completed attempt into a certificate record.
type Certifier interface {
	Issue(studentName, chapterLabel string, score int) domain.Certificate
}

// AttemptState is the lifecycle state of a quiz attempt.
type AttemptState string

const (
	AttemptNotStarted AttemptState = "NOT_STARTED"
	AttemptInProgress AttemptState = "IN_PROGRESS"
	AttemptFinished   AttemptState = "FINISHED"
)

// DefaultSecondsPerQuestion is the countdown budget per question.
const DefaultSecondsPerQuestion = 30

// AnswerFeedback is the outcome of a single submission. CorrectOption is
// always revealed so the learner sees the right answer either way.
type AnswerFeedback struct {
	Correct       bool `json:"correct"`
	CorrectOption int  `json:"correctOption"`
	Score         int  `json:"score"`
	CorrectCount  int  `json:"correctCount"`
}

// AttemptResult summarizes a finished attempt. FinalPercentage is derived
// from the correct count, not the raw additive score, and is the value
// persisted and certified.
type AttemptResult struct {
	FinalPercentage int                `json:"finalPercentage"`
	CorrectCount    int                `json:"correctCount"`
	WrongCount      int                `json:"wrongCount"`
	TimedOut        bool               `json:"timedOut"`
	Certificate     domain.Certificate `json:"certificate"`
}

// QuestionView is a question as shown to the learner, without the answer.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Snapshot is the subscriber-facing view of the live attempt.
type Snapshot struct {
	State         AttemptState   `json:"state"`
	ChapterID     string         `json:"chapterId"`
	QuestionIndex int            `json:"questionIndex"`
	QuestionCount int            `json:"questionCount"`
	TimeRemaining int            `json:"timeRemaining"`
	Score         int            `json:"score"`
	CorrectCount  int            `json:"correctCount"`
	Result        *AttemptResult `json:"result,omitempty"`
}

// QuizRunner owns the single live quiz attempt and its state machine:
// NOT_STARTED -> IN_PROGRESS -> FINISHED, no state re-enterable. At most one
// attempt is alive at a time; a finished attempt is discarded, not reused.
type QuizRunner struct {
	chapters    ChapterRepository
	ledger      ScoreRecorder
	certs       Certifier
	perQuestion int
	tickEvery   time.Duration

	mu      sync.Mutex
	attempt *attempt
}

func NewQuizRunner(chapters ChapterRepository, ledger ScoreRecorder, certs Certifier) *QuizRunner {
	return NewQuizRunnerWithTiming(chapters, ledger, certs, DefaultSecondsPerQuestion, time.Second)
}

// NewQuizRunnerWithTiming allows a shorter countdown budget and tick interval
// for configuration overrides and deterministic tests.
func NewQuizRunnerWithTiming(chapters ChapterRepository, ledger ScoreRecorder, certs Certifier, secondsPerQuestion int, tickEvery time.Duration) *QuizRunner {
	if secondsPerQuestion <= 0 {
		secondsPerQuestion = DefaultSecondsPerQuestion
	}
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &QuizRunner{
		chapters:    chapters,
		ledger:      ledger,
		certs:       certs,
		perQuestion: secondsPerQuestion,
		tickEvery:   tickEvery,
	}
}

// attempt holds the state of one quiz run. All mutation happens under mu;
// the countdown goroutine and user-driven calls both funnel through it.
type attempt struct {
	mu           sync.Mutex
	chapterID    string
	chapterLabel string
	studentName  string
	questions    []domain.Question

	state         AttemptState
	currentIndex  int
	answered      bool
	score         int
	correctCount  int
	timeRemaining int
	timedOut      bool
	result        *AttemptResult

	stopCountdown chan struct{}
	subscribers   map[chan Snapshot]struct{}
}

// Start begins a new attempt. It refuses an empty student name, an unknown
// chapter, a chapter without questions, and a still-live previous attempt.
// On success the per-second countdown is running.
func (r *QuizRunner) Start(ctx context.Context, chapterID, studentName string) error {
	if strings.TrimSpace(studentName) == "" {
		return domain.ErrEmptyStudentName
	}

	chapter, err := r.chapters.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	if len(chapter.Quiz) == 0 {
		return domain.ErrNoQuestions
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempt != nil && !r.attempt.finished() {
		return domain.ErrAttemptInProgress
	}

	a := &attempt{
		chapterID:     chapter.ID,
		chapterLabel:  chapter.Label(),
		studentName:   studentName,
		questions:     chapter.Quiz,
		state:         AttemptInProgress,
		timeRemaining: r.perQuestion * len(chapter.Quiz),
		stopCountdown: make(chan struct{}),
		subscribers:   make(map[chan Snapshot]struct{}),
	}
	r.attempt = a
	go r.runCountdown(a)
	return nil
}

// runCountdown decrements the attempt clock once per tick until the attempt
// finishes or times out. The handle is cancelled on every exit transition.
func (r *QuizRunner) runCountdown(a *attempt) {
	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if a.tick() {
				r.finalize(a)
				return
			}
		case <-a.stopCountdown:
			return
		}
	}
}

// State reports the runner's current lifecycle state.
func (r *QuizRunner) State() AttemptState {
	r.mu.Lock()
	a := r.attempt
	r.mu.Unlock()
	if a == nil {
		return AttemptNotStarted
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// CurrentQuestion returns the question the attempt is waiting on.
func (r *QuizRunner) CurrentQuestion() (QuestionView, error) {
	a, err := r.live()
	if err != nil {
		return QuestionView{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AttemptInProgress {
		return QuestionView{}, domain.ErrAttemptFinished
	}
	q := a.questions[a.currentIndex]
	return QuestionView{
		Index:   a.currentIndex,
		Total:   len(a.questions),
		Prompt:  q.Prompt,
		Options: q.Options,
	}, nil
}

// SubmitAnswer grades the selected option for the current question. Each
// question accepts exactly one submission; repeats are rejected. The correct
// option index is revealed in the feedback whether or not the answer matched.
func (r *QuizRunner) SubmitAnswer(selected int) (AnswerFeedback, error) {
	a, err := r.live()
	if err != nil {
		return AnswerFeedback{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AttemptInProgress {
		return AnswerFeedback{}, domain.ErrAttemptFinished
	}
	if a.answered {
		return AnswerFeedback{}, domain.ErrAlreadyAnswered
	}
	question := a.questions[a.currentIndex]
	if selected < 0 || selected >= len(question.Options) {
		return AnswerFeedback{}, domain.ErrInvalidOption
	}

	a.answered = true
	correct := selected == question.Answer
	if correct {
		a.score += 100
		a.correctCount++
	}
	a.broadcastLocked()
	return AnswerFeedback{
		Correct:       correct,
		CorrectOption: question.Answer,
		Score:         a.score,
		CorrectCount:  a.correctCount,
	}, nil
}

// Advance moves to the next question, or finishes the attempt when the
// current question was the last one. Advancing past an unanswered question
// is rejected. On the finishing call the attempt result is returned.
func (r *QuizRunner) Advance() (*AttemptResult, error) {
	a, err := r.live()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.state != AttemptInProgress {
		a.mu.Unlock()
		return nil, domain.ErrAttemptFinished
	}
	if !a.answered {
		a.mu.Unlock()
		return nil, domain.ErrNotAnswered
	}
	if a.currentIndex < len(a.questions)-1 {
		a.currentIndex++
		a.answered = false
		a.broadcastLocked()
		a.mu.Unlock()
		return nil, nil
	}
	a.state = AttemptFinished
	a.mu.Unlock()

	r.finalize(a)
	return a.takeResult(), nil
}

// Abort discards a live attempt without recording a score, cancelling the
// countdown. Used when the surrounding view is torn down mid-attempt.
func (r *QuizRunner) Abort() {
	r.mu.Lock()
	a := r.attempt
	r.mu.Unlock()
	if a == nil {
		return
	}

	a.mu.Lock()
	if a.state != AttemptInProgress {
		a.mu.Unlock()
		return
	}
	a.state = AttemptFinished
	close(a.stopCountdown)
	a.closeSubscribersLocked()
	a.mu.Unlock()
}

// Subscribe returns a channel of attempt snapshots (ticks, answers,
// completion). The caller must invoke the cancel function to avoid leaks.
func (r *QuizRunner) Subscribe() (<-chan Snapshot, func(), error) {
	a, err := r.live()
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan Snapshot, 8)
	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := a.snapshotLocked()
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel, nil
}

// Result returns the finished attempt's result, if any.
func (r *QuizRunner) Result() (*AttemptResult, error) {
	r.mu.Lock()
	a := r.attempt
	r.mu.Unlock()
	if a == nil {
		return nil, domain.ErrNoActiveAttempt
	}
	result := a.takeResult()
	if result == nil {
		return nil, domain.ErrNoActiveAttempt
	}
	return result, nil
}

func (r *QuizRunner) live() (*attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempt == nil {
		return nil, domain.ErrNoActiveAttempt
	}
	return r.attempt, nil
}

// finalize runs the exit transition side effects exactly once: the goroutine
// that flipped the state to FINISHED (timeout tick or final Advance) is the
// only caller. Remaining unanswered questions count as wrong.
func (r *QuizRunner) finalize(a *attempt) {
	a.mu.Lock()
	select {
	case <-a.stopCountdown:
	default:
		close(a.stopCountdown)
	}

	final := 0
	if len(a.questions) > 0 {
		final = int(math.Round(float64(a.correctCount) / float64(len(a.questions)) * 100))
	}
	result := &AttemptResult{
		FinalPercentage: final,
		CorrectCount:    a.correctCount,
		WrongCount:      len(a.questions) - a.correctCount,
		TimedOut:        a.timedOut,
	}
	chapterID := a.chapterID
	chapterLabel := a.chapterLabel
	studentName := a.studentName
	a.mu.Unlock()

	// Storage write failure is treated as unrecoverable for this mutation:
	// log and move on, no retry.
	if err := r.ledger.RecordQuizScore(context.Background(), chapterID, final); err != nil {
		log.Printf("record quiz score for chapter %s: %v", chapterID, err)
	}
	result.Certificate = r.certs.Issue(studentName, chapterLabel, final)

	a.mu.Lock()
	a.result = result
	a.broadcastLocked()
	a.closeSubscribersLocked()
	a.mu.Unlock()
}

// tick decrements the countdown and reports whether the attempt timed out,
// in which case the caller owns the FINISHED transition.
func (a *attempt) tick() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AttemptInProgress {
		return false
	}
	a.timeRemaining--
	if a.timeRemaining <= 0 {
		a.timeRemaining = 0
		a.timedOut = true
		a.state = AttemptFinished
		return true
	}
	a.broadcastLocked()
	return false
}

func (a *attempt) finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == AttemptFinished
}

func (a *attempt) takeResult() *AttemptResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func (a *attempt) snapshotLocked() Snapshot {
	return Snapshot{
		State:         a.state,
		ChapterID:     a.chapterID,
		QuestionIndex: a.currentIndex,
		QuestionCount: len(a.questions),
		TimeRemaining: a.timeRemaining,
		Score:         a.score,
		CorrectCount:  a.correctCount,
		Result:        a.result,
	}
}

func (a *attempt) broadcastLocked() {
	snap := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks the tick.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (a *attempt) closeSubscribersLocked() {
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}
