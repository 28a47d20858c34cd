// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

// Phase result types. Each pipeline phase produces exactly one of these
// structures, validated at the generation boundary before being treated
// as trusted data. JSON tags match the wire shapes the model is asked
// to produce.

// Bullet is one ranked materiality finding.
type Bullet struct {
	Rank             int    `json:"rank"`
	MaterialityScore int    `json:"materiality_score"`
	Category         string `json:"category"`
	Finding          string `json:"finding"`
	SourceDocument   string `json:"source_document"`
	SoWhat           string `json:"so_what"`
	ActionNeeded     bool   `json:"action_needed"`
}

// MaterialityResult is the output of the materiality analysis phase.
// All downstream phases are conditioned on it.
type MaterialityResult struct {
	BriefingTitle    string   `json:"briefing_title"`
	GeneratedAt      string   `json:"generated_at"`
	DocumentCount    int      `json:"document_count"`
	Bullets          []Bullet `json:"bullets"`
	ExecutiveSummary string   `json:"executive_summary"`
}

// PredictedQuestion is one anticipated analyst question with a prepared
// response.
type PredictedQuestion struct {
	Rank              int    `json:"rank"`
	Question          string `json:"question"`
	TriggeredBy       string `json:"triggered_by"`
	SuggestedResponse string `json:"suggested_response"`
	Difficulty        string `json:"difficulty"`
	LikelyAskerType   string `json:"likely_asker_type"`
}

// QuestionsResult is the output of the analyst questions phase.
type QuestionsResult struct {
	PredictedQuestions []PredictedQuestion `json:"predicted_questions"`
	CallRiskAssessment string              `json:"call_risk_assessment"`
}

// TrendItem describes one period-over-period change. Previous/Current/
// ChangePct are set for improved and deteriorated items, Significance
// for new items, Resolution for resolved ones.
type TrendItem struct {
	Item         string `json:"item"`
	Previous     string `json:"previous,omitempty"`
	Current      string `json:"current,omitempty"`
	ChangePct    string `json:"change_pct,omitempty"`
	Significance string `json:"significance,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
}

// TrendAnalysis groups trend items by direction.
type TrendAnalysis struct {
	Improved     []TrendItem `json:"improved"`
	Deteriorated []TrendItem `json:"deteriorated"`
	NewItems     []TrendItem `json:"new_items"`
	Resolved     []TrendItem `json:"resolved"`
}

// TrendsResult is the output of the trend comparison phase.
type TrendsResult struct {
	TrendAnalysis     TrendAnalysis `json:"trend_analysis"`
	OverallTrajectory string        `json:"overall_trajectory"`
}
