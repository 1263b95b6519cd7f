package domain

// Resource titles assigned by the seeding pipeline for the non-video kinds.
const (
	TitleQuiz         = "Module Quiz"
	TitleFlashcards   = "Flashcards"
	TitleSlides       = "Presentation Slides"
	TitleInfographics = "Infographics"
	TitleReports      = "Reports"
	TitleAudio        = "Audio Resources"
	TitleGame         = "Crossword Puzzle"
)

// TitledVideo is a video together with the title of its resource.
type TitledVideo struct {
	Title string
	Video Video
}

// QuizBundle is a quiz with its question bank.
type QuizBundle struct {
	Quiz      Quiz
	Questions []Question
}

// ModuleBundle is everything the seeding pipeline inserts for one module.
// Resources are created in field order: videos, quiz, flashcards, slides,
// infographics, reports, audio, game.
type ModuleBundle struct {
	Module       Module
	Videos       []TitledVideo
	Quiz         *QuizBundle
	Flashcards   []Flashcard
	Slides       *Slides
	Infographics []Infographic
	Reports      []Report
	Audio        []AudioFile
	Game         *Game
}

// SeededModule carries the ids assigned while inserting a bundle.
type SeededModule struct {
	ModuleID int64
	// VideoResources is parallel to ModuleBundle.Videos.
	VideoResources []int64
	ReportResource int64
	AudioResource  int64
	Resources      []Resource
}
