package seed

import "learning-service/internal/domain"

// ModuleFile is the on-disk definition of one module.
type ModuleFile struct {
	Order             int           `json:"order"`
	Title             string        `json:"title" validate:"required"`
	Description       string        `json:"description"`
	CharacterVideoURL string        `json:"characterVideoUrl" validate:"omitempty,url"`
	Overview          string        `json:"overview"`
	Objectives        []string      `json:"objectives"`
	Resources         ResourcesFile `json:"resources"`
}

type ResourcesFile struct {
	Videos       []VideoFile       `json:"videos" validate:"dive"`
	Quiz         *QuizFile         `json:"quiz"`
	Flashcards   []FlashcardFile   `json:"flashcards" validate:"dive"`
	Slides       *SlidesFile       `json:"slides"`
	Infographics []InfographicFile `json:"infographics" validate:"dive"`
	Reports      []ReportFile      `json:"reports" validate:"dive"`
	Audio        []AudioFile       `json:"audio" validate:"dive"`
	Game         *GameFile         `json:"game"`
}

type SubtitleFile struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtefield=Start"`
	Text  string  `json:"text"`
}

type VideoFile struct {
	Title        string         `json:"title" validate:"required"`
	VideoURL     string         `json:"videoUrl" validate:"required,url"`
	Duration     string         `json:"duration" validate:"max=10"`
	ThumbnailURL string         `json:"thumbnailUrl" validate:"omitempty,url"`
	Subtitles    []SubtitleFile `json:"subtitles" validate:"dive"`
}

type QuizFile struct {
	PassingScore        *int           `json:"passingScore" validate:"omitempty,gte=0,lte=100"`
	QuestionsPerAttempt *int           `json:"questionsPerAttempt" validate:"omitempty,gte=1"`
	Questions           []QuestionFile `json:"questions" validate:"min=1,dive"`
}

// QuestionFile additionally requires CorrectAnswer to index into Options; see validateQuestion.
type QuestionFile struct {
	Question             string   `json:"question" validate:"required"`
	Options              []string `json:"options" validate:"min=2"`
	CorrectAnswer        int      `json:"correctAnswer" validate:"gte=0"`
	Hint                 string   `json:"hint"`
	CorrectExplanation   string   `json:"correctExplanation"`
	IncorrectExplanation string   `json:"incorrectExplanation"`
}

type FlashcardFile struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type SlidesFile struct {
	PDFURL    string `json:"pdfUrl" validate:"required,url"`
	PageCount *int   `json:"pageCount" validate:"omitempty,gte=0"`
}

type InfographicFile struct {
	Title        string `json:"title"`
	ImageURL     string `json:"imageUrl" validate:"required,url"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,url"`
}

type ReportFile struct {
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

type AudioFile struct {
	Title     string         `json:"title"`
	AudioURL  string         `json:"audioUrl" validate:"required,url"`
	Duration  string         `json:"duration" validate:"max=10"`
	Subtitles []SubtitleFile `json:"subtitles" validate:"dive"`
}

type GameFile struct {
	GridSize int        `json:"gridSize" validate:"gte=1"`
	Clues    []ClueFile `json:"clues" validate:"dive"`
}

type ClueFile struct {
	Number    int    `json:"number"`
	Direction string `json:"direction" validate:"oneof=across down"`
	Clue      string `json:"clue" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
	StartRow  int    `json:"startRow" validate:"gte=0"`
	StartCol  int    `json:"startCol" validate:"gte=0"`
}

// Bundle converts the file into the insert bundle, applying quiz defaults and
// numbering list items from 1 in file order.
func (f ModuleFile) Bundle() domain.ModuleBundle {
	objectives := f.Objectives
	if objectives == nil {
		objectives = []string{}
	}
	b := domain.ModuleBundle{
		Module: domain.Module{
			Title:             f.Title,
			Description:       f.Description,
			Order:             f.Order,
			CharacterVideoURL: f.CharacterVideoURL,
			Overview:          f.Overview,
			Objectives:        objectives,
		},
	}
	r := f.Resources

	for _, v := range r.Videos {
		b.Videos = append(b.Videos, domain.TitledVideo{
			Title: v.Title,
			Video: domain.Video{
				VideoURL:     v.VideoURL,
				Duration:     v.Duration,
				ThumbnailURL: v.ThumbnailURL,
				Subtitles:    subtitles(v.Subtitles),
			},
		})
	}

	if r.Quiz != nil {
		quiz := domain.Quiz{PassingScore: domain.DefaultPassingScore, QuestionsPerAttempt: domain.DefaultQuestionsPerAttempt}
		if r.Quiz.PassingScore != nil {
			quiz.PassingScore = *r.Quiz.PassingScore
		}
		if r.Quiz.QuestionsPerAttempt != nil {
			quiz.QuestionsPerAttempt = *r.Quiz.QuestionsPerAttempt
		}
		qb := &domain.QuizBundle{Quiz: quiz}
		for _, q := range r.Quiz.Questions {
			qb.Questions = append(qb.Questions, domain.Question{
				Question:             q.Question,
				Options:              q.Options,
				CorrectAnswer:        q.CorrectAnswer,
				Hint:                 q.Hint,
				CorrectExplanation:   q.CorrectExplanation,
				IncorrectExplanation: q.IncorrectExplanation,
			})
		}
		b.Quiz = qb
	}

	for i, c := range r.Flashcards {
		b.Flashcards = append(b.Flashcards, domain.Flashcard{Question: c.Question, Answer: c.Answer, Order: i + 1})
	}
	if r.Slides != nil {
		b.Slides = &domain.Slides{PDFURL: r.Slides.PDFURL, PageCount: r.Slides.PageCount}
	}
	for i, g := range r.Infographics {
		b.Infographics = append(b.Infographics, domain.Infographic{ImageURL: g.ImageURL, ThumbnailURL: g.ThumbnailURL, Order: i + 1})
	}
	for i, rep := range r.Reports {
		b.Reports = append(b.Reports, domain.Report{Content: rep.Content, Order: i + 1})
	}
	for i, a := range r.Audio {
		b.Audio = append(b.Audio, domain.AudioFile{
			AudioURL:  a.AudioURL,
			Duration:  a.Duration,
			Subtitles: subtitles(a.Subtitles),
			Order:     i + 1,
		})
	}
	if r.Game != nil {
		game := &domain.Game{GridSize: r.Game.GridSize, Clues: []domain.Clue{}}
		for _, c := range r.Game.Clues {
			game.Clues = append(game.Clues, domain.Clue(c))
		}
		b.Game = game
	}
	return b
}

func subtitles(in []SubtitleFile) []domain.Subtitle {
	out := make([]domain.Subtitle, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Subtitle(s))
	}
	return out
}
