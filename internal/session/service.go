package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

type State string

const (
	StateSetup      State = "setup"
	StateInProgress State = "in_progress"
	StateResult     State = "result"
)

// QuestionSource yields the questions for one selector.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, level, week, day string) ([]models.Question, error)
}

// UserStore is the local persistence for user documents and session history.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetStats(ctx context.Context, userID string) ([]models.SessionStats, error)
}

// Reporter accepts a finalized session for background submission.
type Reporter interface {
	Enqueue(userID string, stats models.SessionStats) <-chan error
}

// Session is one client's quiz context, identified by an opaque token. It
// replaces the original global current-user singleton.
type Session struct {
	Token        string
	User         *models.User
	State        State
	Selector     models.QuizSelector
	Questions    []models.Question
	Answers      []string
	Current      int
	HintsUsed    []models.HintUsageRecord
	StartTime    time.Time
	Score        int
	WrongAnswers []models.WrongAnswerEntry

	// ReportDone resolves with the background report outcome of the last
	// completed quiz. The Result transition never waits on it.
	ReportDone <-chan error
}

var quizLevels = map[string]bool{"가볍게": true, "알차게": true, "완벽하게": true}

const (
	maxWeek = 8
	maxDay  = 7
)

type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	source   QuestionSource
	store    UserStore
	reporter Reporter
}

func NewService(source QuestionSource, store UserStore, reporter Reporter) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		source:   source,
		store:    store,
		reporter: reporter,
	}
}

// Register creates the user document and a fresh session in Setup. If the
// store rejects the write no session is created and the caller stays
// unregistered.
func (s *Service) Register(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		CreatedAt:    now,
		LastAccessAt: now,
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		log.Printf("Error persisting new user %s: %v", name, err)
		return nil, ErrRegistrationFailed
	}

	session := &Session{
		Token: uuid.NewString(),
		User:  user,
		State: StateSetup,
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	log.Printf("Registered user %s (%s)", user.Name, user.ID)
	return session, nil
}

// Start fetches questions for the selector and moves the session to
// InProgress. Zero questions (or a fetch error) leaves the session in Setup.
func (s *Service) Start(ctx context.Context, token string, selector models.QuizSelector) (models.QuestionDTO, error) {
	session, err := s.get(token)
	if err != nil {
		return models.QuestionDTO{}, err
	}
	if session.State != StateSetup {
		return models.QuestionDTO{}, ErrInvalidState
	}
	if err := validateSelector(selector); err != nil {
		return models.QuestionDTO{}, err
	}

	questions, err := s.source.FetchQuestions(ctx, selector.Level, selector.Week, selector.Day)
	if err != nil {
		// A fetch error and an empty selector match look the same to the
		// caller; only the log line tells them apart.
		log.Printf("Error fetching questions for %+v: %v", selector, err)
		return models.QuestionDTO{}, ErrNoQuestions
	}
	if len(questions) == 0 {
		log.Printf("No rows matched selector %+v", selector)
		return models.QuestionDTO{}, ErrNoQuestions
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session.State = StateInProgress
	session.Selector = selector
	session.Questions = questions
	session.Answers = make([]string, len(questions))
	session.Current = 0
	session.HintsUsed = nil
	session.StartTime = time.Now()
	session.Score = 0
	session.WrongAnswers = nil

	log.Printf("Session %s started with %d questions", token, len(questions))
	return questions[0].ToDTO(0, len(questions)), nil
}

// CurrentQuestion returns the question at the current index and the answer
// recorded for it, if any.
func (s *Service) CurrentQuestion(token string) (models.QuestionDTO, string, error) {
	session, err := s.get(token)
	if err != nil {
		return models.QuestionDTO{}, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if session.State != StateInProgress {
		return models.QuestionDTO{}, "", ErrInvalidState
	}
	question := session.Questions[session.Current]
	return question.ToDTO(session.Current, len(session.Questions)), session.Answers[session.Current], nil
}

// SelectAnswer records or overwrites the answer slot of the current question
// without advancing.
func (s *Service) SelectAnswer(token, answer string) error {
	session, err := s.get(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.State != StateInProgress {
		return ErrInvalidState
	}
	session.Answers[session.Current] = answer
	return nil
}

// UseHint returns the hint text for the given question. The first reveal for
// a question appends one ledger record; repeat reveals never append again.
func (s *Service) UseHint(token string, questionNumber int) (string, error) {
	session, err := s.get(token)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.State != StateInProgress {
		return "", ErrInvalidState
	}
	if questionNumber < 1 || questionNumber > len(session.Questions) {
		return "", ErrInvalidQuestion
	}

	for _, record := range session.HintsUsed {
		if record.QuestionNumber == questionNumber {
			return session.Questions[questionNumber-1].Hint, nil
		}
	}

	session.HintsUsed = append(session.HintsUsed, models.HintUsageRecord{
		QuestionNumber: questionNumber,
		Timestamp:      time.Now().UTC(),
	})
	return session.Questions[questionNumber-1].Hint, nil
}

// Submit advances to the next question, or on the last question scores the
// session, moves to Result and hands the stats to the reporter. The reporter
// runs in the background; the Result transition does not wait on it.
func (s *Service) Submit(token string) (*models.QuestionDTO, *models.ResultDTO, error) {
	session, err := s.get(token)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.State != StateInProgress {
		return nil, nil, ErrInvalidState
	}

	if session.Current < len(session.Questions)-1 {
		session.Current++
		next := session.Questions[session.Current].ToDTO(session.Current, len(session.Questions))
		return &next, nil, nil
	}

	score, wrongAnswers := ComputeResults(session.Questions, session.Answers)
	timeSpent := int(time.Since(session.StartTime).Seconds())

	session.Score = score
	session.WrongAnswers = wrongAnswers
	session.State = StateResult

	stats := models.SessionStats{
		Level:          session.Selector.Level,
		Week:           session.Selector.Week,
		Day:            session.Selector.Day,
		StartTime:      session.StartTime,
		TimeSpent:      timeSpent,
		Score:          score,
		TotalQuestions: len(session.Questions),
		HintsUsed:      session.HintsUsed,
		WrongAnswers:   wrongAnswers,
	}
	session.ReportDone = s.reporter.Enqueue(session.User.ID, stats)

	log.Printf("Session %s finished: score %d/%d", token, score, len(session.Questions))

	result := &models.ResultDTO{
		Score:          score,
		TotalQuestions: len(session.Questions),
		Percent:        percent(score, len(session.Questions)),
		TimeSpent:      timeSpent,
		HintsUsed:      session.HintsUsed,
		WrongAnswers:   wrongAnswers,
	}
	return nil, result, nil
}

// Restart moves Result back to Setup, discarding the finished quiz.
func (s *Service) Restart(token string) error {
	session, err := s.get(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.State != StateResult {
		return ErrInvalidState
	}

	session.State = StateSetup
	session.Selector = models.QuizSelector{}
	session.Questions = nil
	session.Answers = nil
	session.Current = 0
	session.HintsUsed = nil
	session.Score = 0
	session.WrongAnswers = nil
	return nil
}

// Profile returns the stored user document, which carries the aggregates
// written by the reporter.
func (s *Service) Profile(ctx context.Context, token string) (*models.User, error) {
	session, err := s.get(token)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, session.User.ID)
}

// History returns the stored session snapshots for the session's user.
func (s *Service) History(ctx context.Context, token string) ([]models.SessionStats, error) {
	session, err := s.get(token)
	if err != nil {
		return nil, err
	}
	return s.store.GetStats(ctx, session.User.ID)
}

func (s *Service) get(token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ComputeResults compares each answer slot with its question's correct
// answer by exact string equality. Empty slots never match and show up as
// wrong answers with an empty submitted text.
func ComputeResults(questions []models.Question, answers []string) (int, []models.WrongAnswerEntry) {
	score := 0
	var wrongAnswers []models.WrongAnswerEntry

	for i, question := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if answer == question.Answer {
			score++
			continue
		}
		wrongAnswers = append(wrongAnswers, models.WrongAnswerEntry{
			QuestionNumber: i + 1,
			Question:       question.Prompt,
			Word:           question.Word,
			Category:       question.Category,
			YourAnswer:     answer,
			CorrectAnswer:  question.Answer,
		})
	}

	return score, wrongAnswers
}

func validateSelector(selector models.QuizSelector) error {
	if selector.Level == "" || selector.Week == "" || selector.Day == "" {
		return ErrInvalidSelector
	}
	if !quizLevels[selector.Level] {
		return ErrInvalidSelector
	}
	if !validIndex(selector.Week, "주차", maxWeek) || !validIndex(selector.Day, "일차", maxDay) {
		return ErrInvalidSelector
	}
	return nil
}

// validIndex accepts labels of the form "1주차".."8주차" / "1일차".."7일차".
func validIndex(label, suffix string, max int) bool {
	for i := 1; i <= max; i++ {
		if label == fmt.Sprintf("%d%s", i, suffix) {
			return true
		}
	}
	return false
}

func percent(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(score)/float64(total)*100 + 0.5)
}
