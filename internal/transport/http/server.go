package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"learning-service/internal/app"
	"learning-service/internal/domain"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Users    *app.UserService
	Catalog  *app.CatalogService
	Search   *app.SearchService
	Quizzes  *app.QuizService
	Progress *app.ProgressService
}

// NewServer builds the Fiber app with every route registered.
// checks are pinged by /readyz, keyed by the name reported on failure.
func NewServer(svc Services, tokens TokenParser, checks map[string]Pinger) *fiber.App {
	srv := fiber.New(fiber.Config{
		AppName:               "learning-service",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})
	srv.Use(requestLogger)

	h := &handler{svc: svc, checks: checks}

	srv.Get("/healthz", h.health)
	srv.Get("/readyz", h.ready)
	srv.Post("/auth/login", h.login)

	auth := requireAuth(tokens)
	srv.Get("/auth/me", auth, h.me)

	modules := srv.Group("/modules", auth)
	modules.Get("/", h.listModules)
	modules.Get("/:id", h.getModule)
	modules.Get("/:id/search", h.searchModule)

	res := srv.Group("/resources", auth)
	res.Get("/videos/:id", h.video)
	res.Get("/quizzes/:id", h.quiz)
	res.Get("/flashcards/:id", h.flashcards)
	res.Get("/slides/:id", h.slides)
	res.Get("/infographics/:id", h.infographics)
	res.Get("/reports/:id", h.reports)
	res.Get("/audio/:id", h.audio)
	res.Get("/games/:id", h.game)

	quizzes := srv.Group("/quizzes", auth)
	quizzes.Get("/:id/questions", h.quizQuestions)
	quizzes.Post("/:id/attempts", h.submitAttempt)
	quizzes.Get("/:id/attempts", h.listAttempts)

	srv.Get("/users/me/progress", auth, h.progress)
	return srv
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", "request_id", c.Locals(requestIDKey), "method", c.Method(), "path", c.Path(), "error", err)
		msg = "internal server error"
	}
	return c.Status(code).JSON(errorBody{StatusCode: code, Message: msg, Error: http.StatusText(code)})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
