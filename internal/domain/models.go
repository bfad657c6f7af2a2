package domain

import (
	"strings"
	"time"
)

// ExerciseType identifies one of the fixed drill kinds.
type ExerciseType string

const (
	KanjiReading      ExerciseType = "kanji_lectura"
	FillInBlank       ExerciseType = "frase_hueco"
	ImageVocabulary   ExerciseType = "imagen_vocab"
	SentenceStructure ExerciseType = "estructura"
	WordOrdering      ExerciseType = "ordenar"
	ParticleChoice    ExerciseType = "particula"
	VerbConjugation   ExerciseType = "forma_verbal"
	ShortReading      ExerciseType = "lectura_corta"
)

// ExerciseTypes lists every known type in display order.
var ExerciseTypes = []ExerciseType{
	KanjiReading,
	FillInBlank,
	ImageVocabulary,
	SentenceStructure,
	WordOrdering,
	ParticleChoice,
	VerbConjugation,
	ShortReading,
}

// Valid reports whether t is one of the known exercise types.
func (t ExerciseType) Valid() bool {
	for _, known := range ExerciseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Exercise is a single drill question. It is never mutated after loading.
type Exercise struct {
	ID            string         `json:"id"`
	Type          ExerciseType   `json:"tipo"`
	Prompt        string         `json:"pregunta"`
	Content       map[string]any `json:"contenido"`
	Options       []string       `json:"opciones"`
	CorrectAnswer string         `json:"respuesta_correcta"`
	Level         string         `json:"nivel"`
	Explanation   string         `json:"explicacion,omitempty"`
}

// Usable reports whether the exercise can be played in a session.
func (e Exercise) Usable() bool {
	return e.ID != "" && strings.TrimSpace(e.CorrectAnswer) != ""
}

// ExerciseFilter restricts which exercises a repository returns.
// An empty Types slice means every type.
type ExerciseFilter struct {
	Types []ExerciseType
	Level string
	Limit int
}

// Result is the outcome of one answered exercise within a session.
type Result struct {
	ExerciseID     string       `json:"exerciseId"`
	Correct        bool         `json:"correct"`
	ElapsedSeconds int          `json:"time"`
	Points         int          `json:"points"`
	Type           ExerciseType `json:"tipo"`
}

// Attempt is a persisted Result. CreatedAt is assigned by storage.
type Attempt struct {
	ID             string       `json:"id"`
	UserID         string       `json:"usuario_id"`
	ExerciseID     string       `json:"ejercicio_id"`
	Correct        bool         `json:"correcto"`
	ElapsedSeconds int          `json:"tiempo_respuesta"`
	Points         int          `json:"puntos"`
	Type           ExerciseType `json:"tipo"`
	CreatedAt      time.Time    `json:"fecha"`
}

// AttemptRow is the projection of an attempt used for ranking.
type AttemptRow struct {
	UserID  string
	Points  int
	Correct bool
}

// User is the persisted learner record.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       *string   `json:"nombre"`
	AvatarURL  *string   `json:"avatar_url"`
	Experience int       `json:"exp"`
	Streak     int       `json:"streak"`
	CreatedAt  time.Time `json:"creado_en"`
}

// UserUpdate carries the fields to write; nil fields are left untouched.
type UserUpdate struct {
	Experience *int
	Streak     *int
	Name       *string
	AvatarURL  *string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Experience == nil && u.Streak == nil && u.Name == nil && u.AvatarURL == nil
}

// RankingEntry is one leaderboard row aggregated over the current week.
type RankingEntry struct {
	UserID        string  `json:"usuario_id"`
	Name          string  `json:"nombre"`
	AvatarURL     *string `json:"avatar_url"`
	TotalPoints   int     `json:"total_puntos"`
	TotalCorrect  int     `json:"total_correctas"`
	TotalAttempts int     `json:"total_intentos"`
}

// Profile is a user together with its derived level data.
type Profile struct {
	User
	Level             int     `json:"level"`
	NextLevelExp      int     `json:"nextLevelExp"`
	LevelProgressPerc float64 `json:"levelProgress"`
}
