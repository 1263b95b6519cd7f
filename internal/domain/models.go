package domain

import "time"

// User is a learner identified by a unique display name.
type User struct {
	ID              int64     `json:"id"`
	LastName        string    `json:"lastName"`
	KnowledgeTokens int       `json:"knowledgeTokens"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Module is an ordered unit of course content.
type Module struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Order             int       `json:"order"`
	CharacterVideoURL string    `json:"characterVideoUrl"`
	Overview          string    `json:"overview"`
	Objectives        []string  `json:"objectives"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ModuleSummary decorates a module with the caller's completion flag.
type ModuleSummary struct {
	Module
	Completed bool `json:"completed"`
}

// ModuleDetail is a module together with its resources ordered by position.
type ModuleDetail struct {
	Module
	Resources []Resource `json:"resources"`
}

// ResourceType tags which payload table a resource points at.
type ResourceType string

const (
	ResourceVideo        ResourceType = "video"
	ResourceFlashcard    ResourceType = "flashcard"
	ResourceQuiz         ResourceType = "quiz"
	ResourceSlides       ResourceType = "slides"
	ResourceInfographics ResourceType = "infographics"
	ResourceReport       ResourceType = "report"
	ResourceAudio        ResourceType = "audio"
	ResourceGame         ResourceType = "game"
)

// Valid reports whether t is one of the known resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceVideo, ResourceFlashcard, ResourceQuiz, ResourceSlides,
		ResourceInfographics, ResourceReport, ResourceAudio, ResourceGame:
		return true
	}
	return false
}

// Resource is a typed, ordered item inside a module.
type Resource struct {
	ID        int64        `json:"id"`
	ModuleID  int64        `json:"moduleId"`
	Type      ResourceType `json:"type"`
	Title     string       `json:"title"`
	Order     int          `json:"order"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Subtitle is a timed caption line; Start and End are seconds.
type Subtitle struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Video struct {
	ID           int64      `json:"id"`
	ResourceID   int64      `json:"resourceId"`
	VideoURL     string     `json:"videoUrl"`
	Duration     string     `json:"duration,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Subtitles    []Subtitle `json:"subtitles"`
}

// Quiz holds the grading parameters of a quiz resource.
type Quiz struct {
	ID                  int64     `json:"id"`
	ResourceID          int64     `json:"resourceId"`
	PassingScore        int       `json:"passingScore"`
	QuestionsPerAttempt int       `json:"questionsPerAttempt"`
	CreatedAt           time.Time `json:"createdAt"`
}

const (
	DefaultPassingScore        = 80
	DefaultQuestionsPerAttempt = 5
)

// Question is a multiple choice question including its answer key.
// It must never be returned from the question selection endpoint; see PublicQuestion.
type Question struct {
	ID                   int64    `json:"id"`
	QuizID               int64    `json:"quizId"`
	Question             string   `json:"question"`
	Options              []string `json:"options"`
	CorrectAnswer        int      `json:"correctAnswer"`
	Hint                 string   `json:"hint,omitempty"`
	CorrectExplanation   string   `json:"correctExplanation,omitempty"`
	IncorrectExplanation string   `json:"incorrectExplanation,omitempty"`
}

// Public strips the answer key and explanations.
func (q Question) Public() PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{ID: q.ID, Question: q.Question, Options: options, Hint: q.Hint}
}

// PublicQuestion is the learner-facing view of a question.
type PublicQuestion struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Hint     string   `json:"hint,omitempty"`
}

// Answer is one submitted choice: a question id and a zero-based option index.
type Answer struct {
	QuestionID     int64 `json:"questionId"`
	SelectedOption int   `json:"selectedOption"`
}

// QuizAttempt is the immutable record of one graded submission.
type QuizAttempt struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"userId"`
	QuizID            int64         `json:"quizId"`
	SelectedQuestions []int64       `json:"selectedQuestions"`
	Answers           map[int64]int `json:"answers"`
	Score             int           `json:"score"`
	Passed            bool          `json:"passed"`
	SubmittedAt       time.Time     `json:"submittedAt"`
}

// Feedback explains the grading of a single answer.
type Feedback struct {
	QuestionID     int64  `json:"questionId"`
	Question       string `json:"question"`
	SelectedOption int    `json:"selectedOption"`
	CorrectAnswer  int    `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Explanation    string `json:"explanation"`
}

// AttemptResult is returned to the learner after grading.
type AttemptResult struct {
	Score          int        `json:"score"`
	Passed         bool       `json:"passed"`
	CorrectCount   int        `json:"correctCount"`
	TotalQuestions int        `json:"totalQuestions"`
	Feedback       []Feedback `json:"feedback"`
}

type Flashcard struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resourceId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Order      int    `json:"order"`
}

type Slides struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resourceId"`
	PDFURL     string `json:"pdfUrl"`
	PageCount  *int   `json:"pageCount,omitempty"`
}

type Infographic struct {
	ID           int64  `json:"id"`
	ResourceID   int64  `json:"resourceId"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Order        int    `json:"order"`
}

type Report struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resourceId"`
	Content    string `json:"content"`
	Order      int    `json:"order"`
}

type AudioFile struct {
	ID         int64      `json:"id"`
	ResourceID int64      `json:"resourceId"`
	AudioURL   string     `json:"audioUrl"`
	Duration   string     `json:"duration,omitempty"`
	Subtitles  []Subtitle `json:"subtitles"`
	Order      int        `json:"order"`
}

// Clue is one crossword entry.
type Clue struct {
	Number    int    `json:"number"`
	Direction string `json:"direction"`
	Clue      string `json:"clue"`
	Answer    string `json:"answer"`
	StartRow  int    `json:"startRow"`
	StartCol  int    `json:"startCol"`
}

type Game struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resourceId"`
	GridSize   int    `json:"gridSize"`
	Clues      []Clue `json:"clues"`
}

// ModuleProgress is the per (user, module) completion row.
type ModuleProgress struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	ModuleID    int64      `json:"moduleId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProgressSummary aggregates a learner's module completions.
type ProgressSummary struct {
	TotalModules     int     `json:"totalModules"`
	CompletedCount   int     `json:"completedCount"`
	Progress         int     `json:"progress"`
	CompletedModules []int64 `json:"completedModules"`
}

// ContentType tags the origin of an indexed text fragment.
type ContentType string

const (
	ContentReport        ContentType = "report"
	ContentVideoSubtitle ContentType = "video_subtitle"
	ContentAudioSubtitle ContentType = "audio_subtitle"
)

// SearchableContent is one indexed text fragment; Timestamp is in seconds when set.
type SearchableContent struct {
	ID          int64       `json:"id"`
	ModuleID    int64       `json:"moduleId"`
	ResourceID  int64       `json:"resourceId"`
	ContentType ContentType `json:"contentType"`
	ContentText string      `json:"contentText"`
	Timestamp   *int        `json:"timestamp,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// SearchMatch is a fragment joined with its owning resource, as returned by the store.
type SearchMatch struct {
	Content       SearchableContent
	ResourceTitle string
	ResourceType  ResourceType
}

// SearchResult is a fragment match presented with a snippet.
type SearchResult struct {
	ID            int64        `json:"id"`
	ResourceID    int64        `json:"resourceId"`
	ResourceTitle string       `json:"resourceTitle"`
	ResourceType  ResourceType `json:"resourceType"`
	ContentType   ContentType  `json:"contentType"`
	MatchedText   string       `json:"matchedText"`
	Timestamp     *int         `json:"timestamp,omitempty"`
}
