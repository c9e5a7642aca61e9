package models

import "time"

// User is the current-user document kept in the local store. Aggregates are
// only touched by the result reporter after a completed session.
type User struct {
	ID             string    `json:"user_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessAt   time.Time `json:"last_access_at"`
	TotalStudyTime int       `json:"total_study_time"` // seconds
	TotalQuestions int       `json:"total_questions"`
	TotalCorrect   int       `json:"total_correct"`
	Accuracy       int       `json:"accuracy"` // 0-100, rounded
}

// QuizSelector identifies which question subset to fetch.
type QuizSelector struct {
	Level string `json:"level"`
	Week  string `json:"week"`
	Day   string `json:"day"`
}

type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Question is immutable once fetched. Sequence is 1-based in row order of the
// filtered sheet rows.
type Question struct {
	Sequence int      `json:"sequence"`
	Prompt   string   `json:"prompt"`
	Word     string   `json:"word"`
	Category string   `json:"category"`
	Options  []Option `json:"options"`
	Answer   string   `json:"answer"`
	Hint     string   `json:"hint"`
	Level    string   `json:"level"`
	Week     string   `json:"week"`
	Day      string   `json:"day"`
}

type HintUsageRecord struct {
	QuestionNumber int       `json:"question_number"`
	Timestamp      time.Time `json:"timestamp"`
}

type WrongAnswerEntry struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Word           string `json:"word"`
	Category       string `json:"category"`
	YourAnswer     string `json:"your_answer"`
	CorrectAnswer  string `json:"correct_answer"`
}

// SessionStats is the finalized payload handed to the result reporter and
// appended to the local snapshot list.
type SessionStats struct {
	Level          string             `json:"level"`
	Week           string             `json:"week"`
	Day            string             `json:"day"`
	StartTime      time.Time          `json:"start_time"`
	TimeSpent      int                `json:"time_spent"` // seconds
	Score          int                `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	HintsUsed      []HintUsageRecord  `json:"hints_used"`
	WrongAnswers   []WrongAnswerEntry `json:"wrong_answers"`
	Timestamp      time.Time          `json:"timestamp"`
}
