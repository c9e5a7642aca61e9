package report

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

// ErrNoCurrentUser is returned when a report references a user that is not in
// the store; nothing is dispatched in that case.
var ErrNoCurrentUser = errors.New("no current user")

// UserStore is the local persistence the reporter reads aggregates from and
// writes them back to.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	AppendStats(ctx context.Context, userID string, stats models.SessionStats) error
}

// Sinks are the three write-only form endpoints.
type Sinks interface {
	SubmitWrongAnswer(ctx context.Context, name string, stats models.SessionStats, wrong models.WrongAnswerEntry) error
	SubmitResult(ctx context.Context, name string, stats models.SessionStats) error
	SubmitUserAggregates(ctx context.Context, user *models.User) error
}

type task struct {
	userID string
	stats  models.SessionStats
	done   chan error
}

// Reporter consumes report tasks on a background loop. Submitting a session
// hands the finalized stats to Enqueue and does not wait; the returned
// channel carries the eventual outcome so a retry layer can be added later.
type Reporter struct {
	store UserStore
	sinks Sinks
	tasks chan task
}

func NewReporter(store UserStore, sinks Sinks) *Reporter {
	return &Reporter{
		store: store,
		sinks: sinks,
		tasks: make(chan task, 16),
	}
}

// Run consumes queued report tasks until the queue is closed.
func (r *Reporter) Run() {
	for t := range r.tasks {
		err := r.report(context.Background(), t.userID, t.stats)
		if err != nil {
			log.Printf("Error reporting session for user %s: %v", t.userID, err)
		}
		t.done <- err
	}
}

// Enqueue schedules one report and returns a one-shot channel with its
// eventual success or failure.
func (r *Reporter) Enqueue(userID string, stats models.SessionStats) <-chan error {
	done := make(chan error, 1)
	r.tasks <- task{userID: userID, stats: stats, done: done}
	return done
}

// Close stops the run loop once queued tasks are drained.
func (r *Reporter) Close() {
	close(r.tasks)
}

// report runs the three submission steps in order. A failing step does not
// stop the following ones from being attempted, but any failure makes the
// whole report fail. A score of zero is a valid report.
func (r *Reporter) report(ctx context.Context, userID string, stats models.SessionStats) error {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading user %s for report: %v", userID, err)
		return ErrNoCurrentUser
	}

	var firstErr error

	// Step 1: one independent write per wrong answer, issued together and
	// joined before the result write.
	if len(stats.WrongAnswers) > 0 {
		errs := make(chan error, len(stats.WrongAnswers))
		var wg sync.WaitGroup
		for _, wrong := range stats.WrongAnswers {
			wg.Add(1)
			go func(wrong models.WrongAnswerEntry) {
				defer wg.Done()
				errs <- r.sinks.SubmitWrongAnswer(ctx, user.Name, stats, wrong)
			}(wrong)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	// Step 2: session summary.
	if err := r.sinks.SubmitResult(ctx, user.Name, stats); err != nil {
		log.Printf("Error submitting result for user %s: %v", userID, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	// Step 3: recompute aggregates, persist locally, then write the user sink.
	now := time.Now().UTC()
	user.TotalStudyTime += stats.TimeSpent
	user.TotalQuestions += stats.TotalQuestions
	user.TotalCorrect += stats.Score
	user.Accuracy = accuracy(user.TotalCorrect, user.TotalQuestions)
	user.LastAccessAt = now

	if err := r.store.SaveUser(ctx, user); err != nil {
		log.Printf("Error persisting aggregates for user %s: %v", userID, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	stats.Timestamp = now
	if err := r.store.AppendStats(ctx, userID, stats); err != nil {
		log.Printf("Error appending session snapshot for user %s: %v", userID, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := r.sinks.SubmitUserAggregates(ctx, user); err != nil {
		log.Printf("Error submitting aggregates for user %s: %v", userID, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
