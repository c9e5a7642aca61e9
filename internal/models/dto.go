package models

// QuestionDTO is what the browser sees for the current question. The correct
// answer and hint text stay server-side; hints are revealed through the hint
// endpoint so usage can be recorded.
type QuestionDTO struct {
	Sequence  int      `json:"sequence"`
	Prompt    string   `json:"prompt"`
	Word      string   `json:"word"`
	Category  string   `json:"category"`
	Options   []Option `json:"options"`
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	IsLast    bool     `json:"is_last"`
	TimeLimit int      `json:"time_limit"`
}

type ResultDTO struct {
	Score          int                `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	Percent        int                `json:"percent"`
	TimeSpent      int                `json:"time_spent"`
	HintsUsed      []HintUsageRecord  `json:"hints_used"`
	WrongAnswers   []WrongAnswerEntry `json:"wrong_answers"`
}

func (q Question) ToDTO(index, total int) QuestionDTO {
	return QuestionDTO{
		Sequence:  q.Sequence,
		Prompt:    q.Prompt,
		Word:      q.Word,
		Category:  q.Category,
		Options:   q.Options,
		Index:     index,
		Total:     total,
		IsLast:    index == total-1,
		TimeLimit: 30, // Default 30 seconds per question
	}
}
