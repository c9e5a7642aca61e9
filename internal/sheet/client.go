package sheet

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
	"github.com/poplarplanet/SmileWritingQuiz/pkg/shuffle"
)

const defaultPrompt = "다음 단어의 뜻으로 가장 적절한 것은?"

// One sheet tab per difficulty level.
var levelGIDs = map[string]string{
	"가볍게":  "1955098583",
	"알차게":  "520225063",
	"완벽하게": "276816936",
}

// Client fetches question rows from the spreadsheet CSV export.
type Client struct {
	httpClient *http.Client
	exportURL  string
}

func NewClient(httpClient *http.Client, exportURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		exportURL:  exportURL,
	}
}

// FetchQuestions downloads the sheet for the given level and returns the rows
// matching week and day, in row order, sequence-numbered from 1. Week and day
// are compared after stripping non-digit characters on both sides, so "1주차"
// matches a sheet cell of "1 주차" or "1".
func (c *Client) FetchQuestions(ctx context.Context, level, week, day string) ([]models.Question, error) {
	gid, ok := levelGIDs[level]
	if !ok {
		return nil, fmt.Errorf("unknown level %q", level)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL+"&gid="+gid, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet export returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	rows := parseRows(string(body))
	log.Printf("Parsed %d sheet rows for level %s", len(rows), level)

	wantWeek := digits(week)
	wantDay := digits(day)

	var questions []models.Question
	for _, row := range rows {
		if digits(row[colWeek]) != wantWeek || digits(row[colDay]) != wantDay {
			continue
		}

		prompt := row[colPrompt]
		if prompt == "" {
			prompt = defaultPrompt
		}

		options := []models.Option{
			{ID: 1, Text: row[colOption1]},
			{ID: 2, Text: row[colOption2]},
			{ID: 3, Text: row[colOption3]},
			{ID: 4, Text: row[colOption4]},
		}

		questions = append(questions, models.Question{
			Sequence: len(questions) + 1,
			Prompt:   prompt,
			Word:     row[colWord],
			Category: row[colCategory],
			Options:  shuffle.Options(options),
			Answer:   row[colAnswer],
			Hint:     row[colHint],
			Level:    level,
			Week:     week,
			Day:      day,
		})
	}

	log.Printf("Filtered %d questions for week=%s day=%s", len(questions), week, day)
	return questions, nil
}

// Sheet column layout (0-indexed).
const (
	colWeek     = 1
	colDay      = 2
	colCategory = 3
	colPrompt   = 4
	colWord     = 5
	colOption1  = 6
	colOption2  = 7
	colOption3  = 8
	colOption4  = 9
	colAnswer   = 10
	colHint     = 11
	columnCount = 12
)

// parseRows splits the CSV text on newlines and commas, trimming each cell
// and discarding the header row. Quoted fields containing commas or embedded
// newlines are NOT handled and will corrupt column alignment; the source
// sheet contains no such cells. Rows short of the full column count are
// dropped rather than indexed out of range.
func parseRows(text string) [][]string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var rows [][]string
	for _, line := range lines {
		cells := strings.Split(line, ",")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if len(cells) < columnCount {
			if line != "" {
				log.Printf("Skipping short row with %d cells", len(cells))
			}
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

// digits strips every non-digit rune, so "3주차" becomes "3".
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
