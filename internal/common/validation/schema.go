// Package validation checks API request bodies against precompiled
// JSON schemas before they reach the handlers.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const analyzeIssueSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"category": {"type": "string"},
		"studentId": {"type": "string"}
	},
	"required": ["title", "description"],
	"additionalProperties": false
}`

const sentimentSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"],
	"additionalProperties": false
}`

const predictPrioritySchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"category": {"type": "string"}
	},
	"required": ["title", "description"],
	"additionalProperties": false
}`

const analyzeBatchSchema = `{
	"type": "object",
	"properties": {
		"issueIds": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"minItems": 1
		}
	},
	"required": ["issueIds"],
	"additionalProperties": false
}`

const feedbackSchema = `{
	"type": "object",
	"properties": {
		"issueId": {"type": "string", "minLength": 1},
		"feedback": {"type": "object"}
	},
	"required": ["issueId"],
	"additionalProperties": false
}`

// lexiconSchema mirrors the JSON override format accepted by the
// lexicon loader. Used by the lexicon-check tool and at startup.
const lexiconSchema = `{
	"type": "object",
	"properties": {
		"categories": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"keywords": {
						"type": "array",
						"items": {"type": "string", "minLength": 1},
						"minItems": 1
					}
				},
				"required": ["name", "keywords"]
			}
		},
		"fallbackCategory": {"type": "string"},
		"positive": {"type": "array", "items": {"type": "string"}},
		"negative": {"type": "array", "items": {"type": "string"}},
		"urgent": {"type": "array", "items": {"type": "string"}},
		"sentimentWeights": {"type": "object", "additionalProperties": {"type": "integer"}},
		"categoryWeights": {"type": "object", "additionalProperties": {"type": "number"}},
		"urgencyImpact": {"type": "object", "additionalProperties": {"type": "number"}},
		"sentimentImpact": {"type": "object", "additionalProperties": {"type": "number"}},
		"importantTerms": {"type": "object", "additionalProperties": {"type": "number"}},
		"timeFactors": {"type": "object", "additionalProperties": {"type": "number"}},
		"stopwords": {"type": "array", "items": {"type": "string"}},
		"statusRank": {"type": "object", "additionalProperties": {"type": "integer"}}
	},
	"additionalProperties": false
}`

var (
	analyzeIssue    = mustCompile(analyzeIssueSchema)
	analyzeText     = mustCompile(sentimentSchema)
	predictPriority = mustCompile(predictPrioritySchema)
	analyzeBatch    = mustCompile(analyzeBatchSchema)
	feedback        = mustCompile(feedbackSchema)
	lexicon         = mustCompile(lexiconSchema)
)

func mustCompile(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// AnalyzeIssueRequest validates the analyze-issue and find-similar
// request body.
func AnalyzeIssueRequest(body []byte) error { return validate(analyzeIssue, body) }

// SentimentRequest validates the analyze-sentiment request body.
func SentimentRequest(body []byte) error { return validate(analyzeText, body) }

// PredictPriorityRequest validates the predict-priority request body.
func PredictPriorityRequest(body []byte) error { return validate(predictPriority, body) }

// AnalyzeBatchRequest validates the analyze-batch request body.
func AnalyzeBatchRequest(body []byte) error { return validate(analyzeBatch, body) }

// FeedbackRequest validates the feedback request body.
func FeedbackRequest(body []byte) error { return validate(feedback, body) }

// LexiconDocument validates a lexicon override file.
func LexiconDocument(body []byte) error { return validate(lexicon, body) }

func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		messages = append(messages, fmt.Sprintf("%s: %s", resultErr.Field(), resultErr.Description()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
