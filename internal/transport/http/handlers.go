package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"learning-service/internal/domain"
)

var validate = validator.New()

type handler struct {
	svc    Services
	checks map[string]Pinger
}

type userView struct {
	ID              int64  `json:"id"`
	LastName        string `json:"lastName"`
	KnowledgeTokens int    `json:"knowledgeTokens"`
}

func viewOf(u domain.User) userView {
	return userView{ID: u.ID, LastName: u.LastName, KnowledgeTokens: u.KnowledgeTokens}
}

type loginRequest struct {
	LastName string `json:"lastName" validate:"required,max=255"`
}

type loginResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type attemptRequest struct {
	Answers map[string]int `json:"answers" validate:"required"`
}

type progressResponse struct {
	domain.ProgressSummary
	KnowledgeTokens int `json:"knowledgeTokens"`
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handler) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	failed := fiber.Map{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "checks": failed})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (h *handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	session, err := h.svc.Users.Login(c.UserContext(), req.LastName)
	if err != nil {
		return err
	}
	return c.JSON(loginResponse{User: viewOf(session.User), Token: session.Token})
}

func (h *handler) me(c *fiber.Ctx) error {
	user, err := h.svc.Users.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return unknownUser(err)
	}
	return c.JSON(viewOf(user))
}

func (h *handler) listModules(c *fiber.Ctx) error {
	modules, err := h.svc.Catalog.ListModules(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(modules)
}

func (h *handler) getModule(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	module, err := h.svc.Catalog.GetModule(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(module)
}

func (h *handler) searchModule(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	results, err := h.svc.Search.SearchInModule(c.UserContext(), id, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(results)
}

func (h *handler) video(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Video)
}

func (h *handler) quiz(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Quiz)
}

func (h *handler) flashcards(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Flashcards)
}

func (h *handler) slides(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Slides)
}

func (h *handler) infographics(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Infographics)
}

func (h *handler) reports(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Reports)
}

func (h *handler) audio(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Audio)
}

func (h *handler) game(c *fiber.Ctx) error {
	return byResource(c, h.svc.Catalog.Game)
}

func (h *handler) quizQuestions(c *fiber.Ctx) error {
	return byResource(c, h.svc.Quizzes.SelectAttemptQuestions)
}

func (h *handler) submitAttempt(c *fiber.Ctx) error {
	quizID, err := idParam(c)
	if err != nil {
		return err
	}
	var req attemptRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	answers, err := parseAnswers(req.Answers)
	if err != nil {
		return err
	}
	result, err := h.svc.Quizzes.GradeAttempt(c.UserContext(), currentUserID(c), quizID, answers)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *handler) listAttempts(c *fiber.Ctx) error {
	quizID, err := idParam(c)
	if err != nil {
		return err
	}
	attempts, err := h.svc.Quizzes.ListAttempts(c.UserContext(), currentUserID(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(attempts)
}

func (h *handler) progress(c *fiber.Ctx) error {
	userID := currentUserID(c)
	var (
		summary domain.ProgressSummary
		user    domain.User
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		summary, err = h.svc.Progress.GetProgress(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = h.svc.Users.GetUser(ctx, userID)
		return unknownUser(err)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(progressResponse{ProgressSummary: summary, KnowledgeTokens: user.KnowledgeTokens})
}

func byResource[T any](c *fiber.Ctx, get func(context.Context, int64) (T, error)) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func idParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q must be a positive integer", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

func decodeBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// parseAnswers turns the wire map keyed by question id into typed answers.
func parseAnswers(raw map[string]int) ([]domain.Answer, error) {
	answers := make([]domain.Answer, 0, len(raw))
	for key, option := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: answer key %q is not a question id", domain.ErrInvalidInput, key)
		}
		answers = append(answers, domain.Answer{QuestionID: id, SelectedOption: option})
	}
	return answers, nil
}

// unknownUser treats a token for a vanished user as unauthenticated.
func unknownUser(err error) error {
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
	}
	return err
}
