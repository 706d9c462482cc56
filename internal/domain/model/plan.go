package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlanDays is the fixed length of every diet plan.
const PlanDays = 7

// Meal is a single entry in a day's meal list.
type Meal struct {
	Time     string `json:"time"`
	Meal     string `json:"meal"`
	Calories int    `json:"calories"`
	Notes    string `json:"notes"`
}

// Macros summarises a day's nutritional totals.
type Macros struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
}

// DayPlan is one day of a diet plan.
type DayPlan struct {
	Day    string `json:"day"`
	Meals  []Meal `json:"meals"`
	Macros Macros `json:"macros"`
}

// Plan is the seven-day diet plan artifact produced by generation.
type Plan struct {
	Summary string    `json:"summary"`
	Days    []DayPlan `json:"days"`
	Notes   string    `json:"notes"`
}

// Validate reports whether the plan satisfies the well-formedness
// invariant: exactly seven days, each with at least one meal.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if len(p.Days) != PlanDays {
		return fmt.Errorf("plan has %d days, want %d", len(p.Days), PlanDays)
	}
	for i, d := range p.Days {
		if len(d.Meals) == 0 {
			return fmt.Errorf("day %d (%s) has no meals", i+1, d.Day)
		}
	}
	return nil
}

// PlanRecord is a durable, append-only record of a completed plan.
// One row is written per successful generation; rows are never updated.
type PlanRecord struct {
	ID        string
	UserID    string
	PlanData  []byte
	CreatedAt time.Time
}

// NewPlanRecord serialises a plan into a record owned by userID.
func NewPlanRecord(userID string, plan *Plan) (*PlanRecord, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return &PlanRecord{
		UserID:    userID,
		PlanData:  data,
		CreatedAt: time.Now(),
	}, nil
}

// Plan deserialises the stored payload.
func (r *PlanRecord) Plan() (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(r.PlanData, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan record %s: %w", r.ID, err)
	}
	return &p, nil
}
