package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/adapter"
	"diet-planner-api/internal/infra/metrics"
)

// PlanSource tags where a produced plan came from.
type PlanSource string

const (
	SourceProvider PlanSource = "provider"
	SourceFallback PlanSource = "fallback"
)

// Outcome is the result of one generation: a valid plan plus its origin.
type Outcome struct {
	Source PlanSource
	Plan   *model.Plan
}

// PlanGenerator produces a diet plan from a profile snapshot. Produce is
// total: whatever the provider does — error, timeout, malformed output —
// the caller always receives a well-formed plan. Provider trouble is an
// observability event here, never a failure.
type PlanGenerator struct {
	provider adapter.TextGenerator // nil means no provider configured
	name     string                // provider label for logs/metrics
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewPlanGenerator(provider adapter.TextGenerator, name string, timeout time.Duration, log *zerolog.Logger) *PlanGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PlanGenerator{provider: provider, name: name, timeout: timeout, log: log}
}

// Produce generates a plan for the profile, falling back to the template
// when no provider is configured or the provider output is unusable.
func (g *PlanGenerator) Produce(ctx context.Context, profile model.Profile) Outcome {
	if g.provider == nil {
		g.log.Debug().Msg("no provider configured, using template plan")
		metrics.IncPlanGenerated(string(SourceFallback))
		return Outcome{Source: SourceFallback, Plan: FallbackPlan()}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.provider.GenerateText(callCtx, buildPrompt(profile))
	latency := time.Since(start)
	if err != nil {
		metrics.ObserveProviderCall(g.name, int(latency/time.Millisecond), false)
		g.log.Warn().Err(err).Str("provider", g.name).Dur("latency", latency).
			Msg("provider call failed, using template plan")
		metrics.IncPlanGenerated(string(SourceFallback))
		return Outcome{Source: SourceFallback, Plan: FallbackPlan()}
	}
	metrics.ObserveProviderCall(g.name, int(latency/time.Millisecond), true)

	plan, err := parsePlan(raw)
	if err != nil {
		g.log.Warn().Err(err).Str("provider", g.name).
			Msg("provider output unusable, using template plan")
		metrics.IncPlanGenerated(string(SourceFallback))
		return Outcome{Source: SourceFallback, Plan: FallbackPlan()}
	}

	g.log.Info().Str("provider", g.name).Dur("latency", latency).Msg("plan generated by provider")
	metrics.IncPlanGenerated(string(SourceProvider))
	return Outcome{Source: SourceProvider, Plan: plan}
}

func buildPrompt(p model.Profile) string {
	return fmt.Sprintf(`You are an expert nutritionist. Create a 7-day diet plan for a user with this profile:
- Weight: %.1fkg
- Height: %.1fcm
- Region: %s
- Habits: %s
- Goal: %s

Output MUST be valid JSON with this structure:
{
  "summary": "Brief summary of the strategy",
  "days": [
    {
      "day": "Day 1",
      "meals": [
        { "time": "Breakfast", "meal": "Description", "calories": 500, "notes": "..." }
      ],
      "macros": { "calories": 2000, "protein": "150g", "carbs": "200g", "fat": "60g" }
    }
  ],
  "notes": "General advice"
}
The "days" array must contain exactly 7 entries.
Do not include markdown formatting like`+" ```json"+`. Just the raw JSON string.`,
		p.WeightKg, p.HeightCm, p.Region, p.EatingHabits, p.Goal)
}

// parsePlan strips incidental markdown fencing, unmarshals, and checks the
// plan invariants. Anything short of a well-formed plan is an error.
func parsePlan(raw string) (*model.Plan, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var plan model.Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse provider output: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("validate provider output: %w", err)
	}
	return &plan, nil
}

// FallbackPlan returns the deterministic balanced-diet template. It is the
// same plan on every call, labelled in its notes as a placeholder so
// consumers can tell it apart from a personalised result.
func FallbackPlan() *model.Plan {
	days := make([]model.DayPlan, model.PlanDays)
	for i := range days {
		days[i] = model.DayPlan{
			Day: fmt.Sprintf("Day %d", i+1),
			Meals: []model.Meal{
				{Time: "Breakfast", Meal: "Oatmeal with berries", Calories: 350, Notes: "High fiber"},
				{Time: "Lunch", Meal: "Grilled Chicken Salad", Calories: 500, Notes: "High protein"},
				{Time: "Dinner", Meal: "Salmon with Quinoa", Calories: 600, Notes: "Healthy fats"},
			},
			Macros: model.Macros{Calories: 1450, Protein: "120g", Carbs: "150g", Fat: "50g"},
		}
	}
	return &model.Plan{
		Summary: "Standard Balanced Diet (Fallback)",
		Days:    days,
		Notes:   "This is a sample plan because no API key was provided or the LLM failed.",
	}
}
