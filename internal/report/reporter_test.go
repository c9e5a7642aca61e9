package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	history map[string][]models.SessionStats
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*models.User),
		history: make(map[string][]models.SessionStats),
	}
}

func (m *memStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) AppendStats(ctx context.Context, userID string, stats models.SessionStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[userID] = append(m.history[userID], stats)
	return nil
}

type recordingSinks struct {
	mu           sync.Mutex
	wrongAnswers []models.WrongAnswerEntry
	results      []models.SessionStats
	aggregates   []models.User
	wrongErr     error
	resultErr    error
	userErr      error
}

func (r *recordingSinks) SubmitWrongAnswer(ctx context.Context, name string, stats models.SessionStats, wrong models.WrongAnswerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wrongErr != nil {
		return r.wrongErr
	}
	r.wrongAnswers = append(r.wrongAnswers, wrong)
	return nil
}

func (r *recordingSinks) SubmitResult(ctx context.Context, name string, stats models.SessionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resultErr != nil {
		return r.resultErr
	}
	r.results = append(r.results, stats)
	return nil
}

func (r *recordingSinks) SubmitUserAggregates(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userErr != nil {
		return r.userErr
	}
	r.aggregates = append(r.aggregates, *user)
	return nil
}

func seedUser(store *memStore) *models.User {
	user := &models.User{
		ID:           "user-1",
		Name:         "홍길동",
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
		LastAccessAt: time.Now().UTC().Add(-time.Hour),
	}
	store.users[user.ID] = user
	return user
}

func sampleStats(score, total int, wrong []models.WrongAnswerEntry) models.SessionStats {
	return models.SessionStats{
		Level:          "가볍게",
		Week:           "1주차",
		Day:            "1일차",
		StartTime:      time.Now().Add(-42 * time.Second),
		TimeSpent:      42,
		Score:          score,
		TotalQuestions: total,
		WrongAnswers:   wrong,
	}
}

func TestReportAbortsWithoutUser(t *testing.T) {
	store := newMemStore()
	sinks := &recordingSinks{}
	reporter := NewReporter(store, sinks)

	err := reporter.report(context.Background(), "missing", sampleStats(5, 5, nil))
	if !errors.Is(err, ErrNoCurrentUser) {
		t.Fatalf("expected ErrNoCurrentUser, got %v", err)
	}
	if len(sinks.wrongAnswers)+len(sinks.results)+len(sinks.aggregates) != 0 {
		t.Fatal("nothing should be dispatched without a user")
	}
}

func TestReportUpdatesAggregates(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	sinks := &recordingSinks{}
	reporter := NewReporter(store, sinks)

	wrong := []models.WrongAnswerEntry{
		{QuestionNumber: 2, YourAnswer: "오답", CorrectAnswer: "정답2"},
		{QuestionNumber: 4, YourAnswer: "", CorrectAnswer: "정답4"},
	}
	if err := reporter.report(context.Background(), user.ID, sampleStats(3, 5, wrong)); err != nil {
		t.Fatalf("report returned error: %v", err)
	}

	updated, err := store.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if updated.TotalStudyTime != 42 {
		t.Fatalf("expected study time 42, got %d", updated.TotalStudyTime)
	}
	if updated.TotalQuestions != 5 || updated.TotalCorrect != 3 {
		t.Fatalf("unexpected totals: %+v", updated)
	}
	if updated.Accuracy != 60 {
		t.Fatalf("expected accuracy 60, got %d", updated.Accuracy)
	}
	if !updated.LastAccessAt.After(user.LastAccessAt) {
		t.Fatal("last access timestamp not refreshed")
	}

	if len(sinks.wrongAnswers) != 2 {
		t.Fatalf("expected 2 wrong answer writes, got %d", len(sinks.wrongAnswers))
	}
	if len(sinks.results) != 1 || len(sinks.aggregates) != 1 {
		t.Fatalf("expected one result and one aggregate write, got %d/%d", len(sinks.results), len(sinks.aggregates))
	}
	if sinks.aggregates[0].Accuracy != 60 {
		t.Fatalf("aggregate sink saw accuracy %d", sinks.aggregates[0].Accuracy)
	}
	if len(store.history[user.ID]) != 1 {
		t.Fatalf("expected 1 session snapshot, got %d", len(store.history[user.ID]))
	}
}

func TestReportAccumulatesAcrossSessions(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	reporter := NewReporter(store, &recordingSinks{})

	if err := reporter.report(context.Background(), user.ID, sampleStats(5, 5, nil)); err != nil {
		t.Fatalf("first report returned error: %v", err)
	}
	if err := reporter.report(context.Background(), user.ID, sampleStats(2, 5, nil)); err != nil {
		t.Fatalf("second report returned error: %v", err)
	}

	updated, _ := store.GetUser(context.Background(), user.ID)
	if updated.TotalQuestions != 10 || updated.TotalCorrect != 7 {
		t.Fatalf("unexpected totals after two sessions: %+v", updated)
	}
	// 7/10 rounds to 70.
	if updated.Accuracy != 70 {
		t.Fatalf("expected accuracy 70, got %d", updated.Accuracy)
	}
}

func TestReportTreatsZeroScoreAsValid(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	sinks := &recordingSinks{}
	reporter := NewReporter(store, sinks)

	wrong := []models.WrongAnswerEntry{
		{QuestionNumber: 1}, {QuestionNumber: 2}, {QuestionNumber: 3},
		{QuestionNumber: 4}, {QuestionNumber: 5},
	}
	if err := reporter.report(context.Background(), user.ID, sampleStats(0, 5, wrong)); err != nil {
		t.Fatalf("zero score report must succeed, got %v", err)
	}

	updated, _ := store.GetUser(context.Background(), user.ID)
	if updated.TotalCorrect != 0 || updated.TotalQuestions != 5 || updated.Accuracy != 0 {
		t.Fatalf("unexpected aggregates for zero score: %+v", updated)
	}
	if len(sinks.results) != 1 {
		t.Fatal("result sink not written for zero score")
	}
}

func TestReportContinuesPastSinkFailures(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	sinks := &recordingSinks{wrongErr: errors.New("sink down")}
	reporter := NewReporter(store, sinks)

	wrong := []models.WrongAnswerEntry{{QuestionNumber: 1}}
	err := reporter.report(context.Background(), user.ID, sampleStats(4, 5, wrong))
	if err == nil {
		t.Fatal("expected overall failure when a step fails")
	}

	// Later steps still ran: result write, aggregate persist and write.
	if len(sinks.results) != 1 || len(sinks.aggregates) != 1 {
		t.Fatalf("later steps skipped: results=%d aggregates=%d", len(sinks.results), len(sinks.aggregates))
	}
	updated, _ := store.GetUser(context.Background(), user.ID)
	if updated.TotalQuestions != 5 {
		t.Fatal("aggregates not persisted despite sink failure")
	}
}

func TestReportFailsWhenPersistFails(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	store.saveErr = errors.New("redis down")
	sinks := &recordingSinks{}
	reporter := NewReporter(store, sinks)

	if err := reporter.report(context.Background(), user.ID, sampleStats(5, 5, nil)); err == nil {
		t.Fatal("expected failure when user persistence fails")
	}
	// The user sink write is still attempted.
	if len(sinks.aggregates) != 1 {
		t.Fatal("aggregate sink write skipped after persist failure")
	}
}

func TestEnqueueResolvesFuture(t *testing.T) {
	store := newMemStore()
	user := seedUser(store)
	reporter := NewReporter(store, &recordingSinks{})
	go reporter.Run()
	defer reporter.Close()

	done := reporter.Enqueue(user.ID, sampleStats(5, 5, nil))
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected successful report, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("report future never resolved")
	}
}

func TestAccuracyRounding(t *testing.T) {
	tests := []struct {
		correct int
		total   int
		want    int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
		{0, 5, 0},
	}

	for _, tc := range tests {
		if got := accuracy(tc.correct, tc.total); got != tc.want {
			t.Fatalf("accuracy(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}
