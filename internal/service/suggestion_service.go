package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/llm"
	"github.com/locvowork/performpulse/internal/logger"
	"github.com/locvowork/performpulse/internal/metrics"
)

// suggestionOutputSchema is the structure the backend is asked to produce.
var suggestionOutputSchema = []domain.SchemaField{
	{Name: "skillSummary", Type: domain.SchemaTypeString, Description: "A summary of the key skills shown in the employee feedback, ranked in order of importance."},
	{Name: "suggestedProjects", Type: domain.SchemaTypeStringArray, Description: "Project assignments suited to the employee's skills and role."},
}

// rawSuggestion detects missing fields, which a plain struct would zero silently.
type rawSuggestion struct {
	SkillSummary      *string   `json:"skillSummary" validate:"required"`
	SuggestedProjects *[]string `json:"suggestedProjects" validate:"required"`
}

// SuggestionService turns employee feedback into a skill summary and project ideas.
type SuggestionService struct {
	generator domain.TextGenerator
	prompt    *llm.PromptConfig
	directory domain.Directory
	validate  *validator.Validate
}

func NewSuggestionService(generator domain.TextGenerator, prompt *llm.PromptConfig, directory domain.Directory) *SuggestionService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &SuggestionService{
		generator: generator,
		prompt:    prompt,
		directory: directory,
		validate:  v,
	}
}

// Suggest validates the input, calls the backend once and validates its answer.
// Invalid input never reaches the backend.
func (s *SuggestionService) Suggest(ctx context.Context, in domain.SuggestionInput) (*domain.SuggestionOutput, error) {
	backend := s.generator.Name()

	// blank-only input is rejected; the prompt still embeds the input as given
	trimmed := domain.SuggestionInput{
		EmployeeFeedback: strings.TrimSpace(in.EmployeeFeedback),
		EmployeeRole:     strings.TrimSpace(in.EmployeeRole),
	}
	if err := s.validate.Struct(trimmed); err != nil {
		metrics.ObserveSuggestion(backend, metrics.OutcomeInvalid)
		return nil, toValidationError(domain.ValidationStageInput, err)
	}

	prompt, err := s.prompt.Render(in)
	if err != nil {
		metrics.ObserveSuggestion(backend, metrics.OutcomeError)
		return nil, err
	}

	text, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      prompt,
		Model:       s.prompt.Model,
		Temperature: s.prompt.Temperature,
		Output:      suggestionOutputSchema,
	})
	if err != nil {
		metrics.ObserveSuggestion(backend, metrics.OutcomeError)
		if !domain.IsTransport(err) {
			err = &domain.TransportError{Op: backend + " generate", Err: err}
		}
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		metrics.ObserveSuggestion(backend, metrics.OutcomeError)
		return nil, &domain.TransportError{Op: backend + " generate", Err: errors.New("empty response")}
	}

	out, err := s.decodeOutput(text)
	if err != nil {
		metrics.ObserveSuggestion(backend, metrics.OutcomeInvalid)
		logger.WarnLog(ctx, "Backend %s returned a malformed suggestion: %v", backend, err)
		return nil, err
	}

	metrics.ObserveSuggestion(backend, metrics.OutcomeOK)
	return out, nil
}

// SuggestForEmployee runs Suggest with the feedback and job title of a directory record.
func (s *SuggestionService) SuggestForEmployee(ctx context.Context, id int) (*domain.SuggestionOutput, error) {
	e, err := s.directory.FetchEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Suggest(ctx, domain.SuggestionInput{
		EmployeeFeedback: e.Feedback,
		EmployeeRole:     e.Company.Title,
	})
}

func (s *SuggestionService) decodeOutput(text string) (*domain.SuggestionOutput, error) {
	var raw rawSuggestion
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, &domain.ValidationError{Stage: domain.ValidationStageOutput, Err: err}
	}
	if err := s.validate.Struct(raw); err != nil {
		return nil, toValidationError(domain.ValidationStageOutput, err)
	}
	return &domain.SuggestionOutput{
		SkillSummary:      *raw.SkillSummary,
		SuggestedProjects: append([]string{}, (*raw.SuggestedProjects)...),
	}, nil
}

func toValidationError(stage string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Stage: stage, Err: err}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &domain.ValidationError{Stage: stage, Fields: fields, Err: err}
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
