package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"diet-planner-api/internal/config"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/infra/logging"
)

var testLogger = logging.New(config.LogConfig{Level: "error", Format: "console"}, true)

func providerPlanJSON(t *testing.T) string {
	t.Helper()
	plan := FallbackPlan()
	plan.Summary = "Personalised high-protein plan"
	plan.Notes = "Drink water"
	b, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	return string(b)
}

func TestProduceNoProviderIsDeterministic(t *testing.T) {
	g := NewPlanGenerator(nil, "none", time.Second, testLogger)
	profile := model.Profile{UserID: "u1", WeightKg: 70, HeightCm: 175, Region: "South India", EatingHabits: "Vegetarian", Goal: "Muscle Gain"}

	first := g.Produce(context.Background(), profile)
	second := g.Produce(context.Background(), profile)

	if first.Source != SourceFallback || second.Source != SourceFallback {
		t.Fatalf("sources = %s, %s; want fallback", first.Source, second.Source)
	}

	a, _ := json.Marshal(first.Plan)
	b, _ := json.Marshal(second.Plan)
	if string(a) != string(b) {
		t.Error("fallback plan is not byte-for-byte reproducible")
	}
	if err := first.Plan.Validate(); err != nil {
		t.Errorf("fallback plan invalid: %v", err)
	}
	if !strings.Contains(first.Plan.Notes, "sample plan") {
		t.Errorf("fallback notes do not identify a template: %q", first.Plan.Notes)
	}
}

func TestProduceUsesProviderOutput(t *testing.T) {
	p := &fakeProvider{reply: providerPlanJSON(t)}
	g := NewPlanGenerator(p, "fake", time.Second, testLogger)

	out := g.Produce(context.Background(), model.Profile{UserID: "u1", WeightKg: 70, HeightCm: 175})
	if out.Source != SourceProvider {
		t.Fatalf("source = %s, want provider", out.Source)
	}
	if out.Plan.Summary != "Personalised high-protein plan" {
		t.Errorf("summary = %q", out.Plan.Summary)
	}
}

func TestProduceStripsMarkdownFences(t *testing.T) {
	p := &fakeProvider{reply: "```json\n" + providerPlanJSON(t) + "\n```"}
	g := NewPlanGenerator(p, "fake", time.Second, testLogger)

	out := g.Produce(context.Background(), model.Profile{})
	if out.Source != SourceProvider {
		t.Fatalf("fenced output should still parse; source = %s", out.Source)
	}
}

func TestProduceFallsBackOnProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("upstream 500")}
	g := NewPlanGenerator(p, "fake", time.Second, testLogger)

	out := g.Produce(context.Background(), model.Profile{})
	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", out.Source)
	}
	if err := out.Plan.Validate(); err != nil {
		t.Errorf("fallback plan invalid: %v", err)
	}
}

func TestProduceFallsBackOnMalformedOutput(t *testing.T) {
	for name, reply := range map[string]string{
		"not json":   "I am sorry, I cannot help with that.",
		"wrong days": `{"summary":"x","days":[{"day":"Day 1","meals":[{"time":"B","meal":"x","calories":1,"notes":""}],"macros":{"calories":1,"protein":"1g","carbs":"1g","fat":"1g"}}],"notes":"y"}`,
		"empty meals": func() string {
			plan := FallbackPlan()
			plan.Days[2].Meals = nil
			b, _ := json.Marshal(plan)
			return string(b)
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			g := NewPlanGenerator(&fakeProvider{reply: reply}, "fake", time.Second, testLogger)
			out := g.Produce(context.Background(), model.Profile{})
			if out.Source != SourceFallback {
				t.Errorf("source = %s, want fallback", out.Source)
			}
			if err := out.Plan.Validate(); err != nil {
				t.Errorf("plan invalid after fallback: %v", err)
			}
		})
	}
}

func TestProduceFallsBackOnTimeout(t *testing.T) {
	p := &fakeProvider{reply: providerPlanJSON(t), delay: 200 * time.Millisecond}
	g := NewPlanGenerator(p, "fake", 10*time.Millisecond, testLogger)

	out := g.Produce(context.Background(), model.Profile{})
	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback on timeout", out.Source)
	}
}

func TestBuildPromptCarriesProfileAttributes(t *testing.T) {
	prompt := buildPrompt(model.Profile{
		WeightKg: 70, HeightCm: 175,
		Region: "South India", EatingHabits: "Vegetarian", Goal: "Muscle Gain",
	})
	for _, want := range []string{"70.0kg", "175.0cm", "South India", "Vegetarian", "Muscle Gain", "7-day"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
