package shuffle

import (
	"math/rand"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

// Options returns the given options in uniformly random order. The input
// slice is left unmodified. Fisher-Yates, swapping each position with a
// uniformly chosen position at or before it.
func Options(options []models.Option) []models.Option {
	shuffled := make([]models.Option, len(options))
	copy(shuffled, options)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
