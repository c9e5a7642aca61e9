package forms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

// Opaque entry ids bound 1:1 to the form fields of each sink.
const (
	wrongName     = "entry.1754930772"
	wrongTime     = "entry.17007531"
	wrongQuestion = "entry.912276066"
	wrongCorrect  = "entry.572880675"
	wrongYours    = "entry.1506016494"
	wrongWeekDay  = "entry.254040016"
	wrongLevel    = "entry.903891306"
	wrongNumber   = "entry.1657044084"

	resultName    = "entry.457728055"
	resultTime    = "entry.1391954200"
	resultLevel   = "entry.84194388"
	resultWeekDay = "entry.1610792376"
	resultCount   = "entry.1106397759"
	resultScore   = "entry.1316086715"
	resultSpent   = "entry.1861667944"
	resultHints   = "entry.1469800692"

	userID         = "entry.2131886430"
	userName       = "entry.2099612741"
	userCreatedAt  = "entry.1112895249"
	userLastAccess = "entry.1125686986"
	userStudyTime  = "entry.732458785"
	userQuestions  = "entry.1314368282"
	userCorrect    = "entry.776600633"
	userAccuracy   = "entry.1637599612"
)

const noHintsUsed = "없음"

// Client writes to the three form submission sinks. Responses are not parsed;
// only transport errors and non-success statuses are reported.
type Client struct {
	httpClient *http.Client
	userURL    string
	resultURL  string
	wrongURL   string
}

func NewClient(httpClient *http.Client, userURL, resultURL, wrongURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		userURL:    userURL,
		resultURL:  resultURL,
		wrongURL:   wrongURL,
	}
}

func (c *Client) SubmitWrongAnswer(ctx context.Context, name string, stats models.SessionStats, wrong models.WrongAnswerEntry) error {
	form := url.Values{}
	form.Set(wrongName, name)
	form.Set(wrongTime, time.Now().UTC().Format(time.RFC3339))
	form.Set(wrongQuestion, wrong.Question)
	form.Set(wrongCorrect, wrong.CorrectAnswer)
	form.Set(wrongYours, wrong.YourAnswer)
	form.Set(wrongWeekDay, stats.Week+"/"+stats.Day)
	form.Set(wrongLevel, stats.Level)
	form.Set(wrongNumber, strconv.Itoa(wrong.QuestionNumber))

	return c.post(ctx, c.wrongURL, form)
}

func (c *Client) SubmitResult(ctx context.Context, name string, stats models.SessionStats) error {
	form := url.Values{}
	form.Set(resultName, name)
	form.Set(resultTime, time.Now().UTC().Format(time.RFC3339))
	form.Set(resultLevel, stats.Level)
	form.Set(resultWeekDay, stats.Week+"/"+stats.Day)
	form.Set(resultCount, strconv.Itoa(stats.TotalQuestions))
	form.Set(resultScore, strconv.Itoa(stats.Score))
	form.Set(resultSpent, strconv.Itoa(stats.TimeSpent))
	form.Set(resultHints, hintUsage(stats.HintsUsed))

	return c.post(ctx, c.resultURL, form)
}

func (c *Client) SubmitUserAggregates(ctx context.Context, user *models.User) error {
	form := url.Values{}
	form.Set(userID, user.ID)
	form.Set(userName, user.Name)
	form.Set(userCreatedAt, user.CreatedAt.UTC().Format(time.RFC3339))
	form.Set(userLastAccess, user.LastAccessAt.UTC().Format(time.RFC3339))
	form.Set(userStudyTime, strconv.Itoa(user.TotalStudyTime))
	form.Set(userQuestions, strconv.Itoa(user.TotalQuestions))
	form.Set(userCorrect, strconv.Itoa(user.TotalCorrect))
	form.Set(userAccuracy, strconv.Itoa(user.Accuracy))

	return c.post(ctx, c.userURL, form)
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("form sink returned status %d", resp.StatusCode)
	}
	return nil
}

// hintUsage renders the ledger as a comma-joined list of question numbers.
func hintUsage(records []models.HintUsageRecord) string {
	if len(records) == 0 {
		return noHintsUsed
	}
	numbers := make([]string, len(records))
	for i, record := range records {
		numbers[i] = strconv.Itoa(record.QuestionNumber)
	}
	return strings.Join(numbers, ",")
}
