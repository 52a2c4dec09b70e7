package planner_test

import (
	"testing"

	"github.com/castlight-audio/podcastgen/internal/planner"
)

const samplePlan = `## Overview
A tour through two-wheeled history.

## Target Audience
Curious generalists.

## Narrative Structure
Chronological.

## Chapter Breakdown

### Chapter 1: Early Origins
Duration: 2 minutes
Key Points:
- Draisines and velocipedes
- The boneshaker era
Narrative Purpose: Set the historical stage
Research Focus: 19th century bicycle prototypes

### Chapter 2: The Safety Bicycle
Duration: 2 minutes
Key Points:
- Chain drive
- Pneumatic tires
Narrative Purpose: Explain the breakthrough design
Research Focus: 1880s-1890s innovations

## Research Priorities
Primary sources on early cycling clubs.

## Style Guidelines
Conversational, light humor.

## Success Metrics
Listener retention through chapter 2.
`

func TestParseExtractsChapters(t *testing.T) {
	plan := planner.Parse(samplePlan)

	if len(plan.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(plan.Chapters))
	}
	if plan.Chapters[0].Title != "Early Origins" {
		t.Errorf("chapter 1 title = %q", plan.Chapters[0].Title)
	}
	if len(plan.Chapters[0].KeyPoints) != 2 {
		t.Errorf("chapter 1 key points = %v", plan.Chapters[0].KeyPoints)
	}
	if plan.Chapters[1].Purpose != "Explain the breakthrough design" {
		t.Errorf("chapter 2 purpose = %q", plan.Chapters[1].Purpose)
	}
}
