package app

import (
	"math/rand"

	"n5-drill-service/internal/domain"
)

// shuffleExercises permutes items in place with Fisher-Yates.
func shuffleExercises(rnd *rand.Rand, items []domain.Exercise) {
	rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
