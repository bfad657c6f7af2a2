package memory

import "n5-drill-service/internal/domain"

// DemoUserID is the user provisioned when the service runs without Postgres.
const DemoUserID = "demo"

// SampleExercises provides a minimal N5 set covering every exercise type; swap this
// loader with the Postgres-backed one in production.
func SampleExercises() []domain.Exercise {
	return []domain.Exercise{
		{
			ID:            "ex-01",
			Type:          domain.KanjiReading,
			Prompt:        "¿Cómo se lee este kanji?",
			Content:       map[string]any{"kanji": "水"},
			Options:       []string{"みず", "ひ", "き", "つち"},
			CorrectAnswer: "みず",
			Level:         "N5",
			Explanation:   "水 (みず) significa agua.",
		},
		{
			ID:            "ex-02",
			Type:          domain.FillInBlank,
			Prompt:        "Completa la frase",
			Content:       map[string]any{"frase": "わたし＿＿がくせいです。"},
			Options:       []string{"は", "を", "に", "で"},
			CorrectAnswer: "は",
			Level:         "N5",
		},
		{
			ID:            "ex-03",
			Type:          domain.ImageVocabulary,
			Prompt:        "¿Qué es esto?",
			Content:       map[string]any{"imagen_url": "/img/neko.png"},
			Options:       []string{"いぬ", "ねこ", "とり", "さかな"},
			CorrectAnswer: "ねこ",
			Level:         "N5",
		},
		{
			ID:            "ex-04",
			Type:          domain.SentenceStructure,
			Prompt:        "Elige la estructura correcta",
			Content:       map[string]any{"frase": "きのう ＿＿。"},
			Options:       []string{"たべます", "たべました", "たべる", "たべて"},
			CorrectAnswer: "たべました",
			Level:         "N5",
		},
		{
			ID:            "ex-05",
			Type:          domain.WordOrdering,
			Prompt:        "Ordena las palabras",
			Content:       map[string]any{"palabras": []any{"を", "パン", "たべます"}},
			Options:       []string{"パン を たべます"},
			CorrectAnswer: "パン を たべます",
			Level:         "N5",
		},
		{
			ID:            "ex-06",
			Type:          domain.ParticleChoice,
			Prompt:        "Elige la partícula",
			Content:       map[string]any{"frase": "がっこう＿＿いきます。"},
			Options:       []string{"へ", "を", "が", "と"},
			CorrectAnswer: "へ",
			Level:         "N5",
		},
		{
			ID:            "ex-07",
			Type:          domain.VerbConjugation,
			Prompt:        "Forma negativa de のむ",
			Content:       map[string]any{"kanji": "飲む"},
			Options:       []string{"のまない", "のみない", "のむない", "のめない"},
			CorrectAnswer: "のまない",
			Level:         "N5",
		},
		{
			ID:            "ex-08",
			Type:          domain.ShortReading,
			Prompt:        "¿A qué hora se levanta?",
			Content:       map[string]any{"texto": "わたしは まいあさ ６じに おきます。"},
			Options:       []string{"５じ", "６じ", "７じ", "８じ"},
			CorrectAnswer: "６じ",
			Level:         "N5",
		},
	}
}

// DemoUser returns the user seeded in memory mode.
func DemoUser() domain.User {
	name := "Demo"
	return domain.User{ID: DemoUserID, Email: "demo@example.com", Name: &name}
}
