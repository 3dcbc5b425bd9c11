package schema

import "github.com/learnpath/learnpath/internal/feature"

// shapes holds the JSON Schema for each feature's normalized output.
// Normalization (coercion plus defaults) runs first, so these describe the
// strict shape rather than everything a model might send.
var shapes = map[feature.Feature]string{
	feature.LearningStyle: `{
		"type": "object",
		"required": ["visual_score", "auditory_score", "kinesthetic_score", "reading_score", "dominant_style"],
		"properties": {
			"visual_score":      {"type": "number", "minimum": 0, "maximum": 100},
			"auditory_score":    {"type": "number", "minimum": 0, "maximum": 100},
			"kinesthetic_score": {"type": "number", "minimum": 0, "maximum": 100},
			"reading_score":     {"type": "number", "minimum": 0, "maximum": 100},
			"dominant_style":    {"enum": ["visual", "auditory", "kinesthetic", "reading"]},
			"secondary_style":   {"enum": ["visual", "auditory", "kinesthetic", "reading", null]}
		}
	}`,

	feature.ContentRecommendation: `{
		"type": "array",
		"minItems": 1,
		"items": {
			"type": "object",
			"required": ["content", "explanation", "approach_suggestion"],
			"properties": {
				"content": {
					"type": "object",
					"required": ["id", "title", "type", "match_score"],
					"properties": {
						"id":          {"type": "integer"},
						"title":       {"type": "string", "minLength": 1},
						"type":        {"type": "string", "minLength": 1},
						"match_score": {"type": "number", "minimum": 0, "maximum": 1}
					}
				},
				"explanation":         {"type": "string", "minLength": 1},
				"approach_suggestion": {"type": "string", "minLength": 1}
			}
		}
	}`,

	feature.WeaknessAnalysis: `{
		"type": "object",
		"required": ["weak_areas", "strength_areas", "improvement_plan"],
		"properties": {
			"weak_areas": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["topic", "confidence_level", "suggested_resources"],
					"properties": {
						"topic":            {"type": "string", "minLength": 1},
						"confidence_level": {"type": "number", "minimum": 0, "maximum": 1},
						"suggested_resources": {
							"type": "array",
							"items": {
								"type": "object",
								"required": ["type", "title"],
								"properties": {
									"type":  {"type": "string"},
									"title": {"type": "string"},
									"url":   {"type": "string"}
								}
							}
						}
					}
				}
			},
			"strength_areas": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["topic", "confidence_level"],
					"properties": {
						"topic":            {"type": "string", "minLength": 1},
						"confidence_level": {"type": "number", "minimum": 0, "maximum": 1}
					}
				}
			},
			"improvement_plan": {
				"type": "object",
				"required": ["short_term_goals", "long_term_goals", "recommended_study_path"],
				"properties": {
					"short_term_goals":       {"type": "array", "items": {"type": "string"}},
					"long_term_goals":        {"type": "array", "items": {"type": "string"}},
					"recommended_study_path": {"type": "string", "minLength": 1}
				}
			}
		}
	}`,

	feature.MistakeAnalysis: `{
		"type": "object",
		"required": ["common_mistakes", "mistake_patterns", "remediation_plan"],
		"properties": {
			"common_mistakes": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["topic", "frequency", "examples", "remediation"],
					"properties": {
						"topic":       {"type": "string", "minLength": 1},
						"frequency":   {"type": "string", "minLength": 1},
						"examples":    {"type": "array", "items": {"type": "string"}},
						"remediation": {"type": "string", "minLength": 1}
					}
				}
			},
			"mistake_patterns": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			},
			"remediation_plan": {
				"type": "object",
				"required": ["focus_areas", "suggested_exercises", "learning_materials"],
				"properties": {
					"focus_areas":         {"type": "array", "items": {"type": "string"}},
					"suggested_exercises": {"type": "array", "items": {"type": "string"}},
					"learning_materials":  {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}`,

	feature.AdaptiveTest: `{
		"type": "object",
		"required": ["questions", "adaptive_logic", "estimated_difficulty", "topics_covered"],
		"properties": {
			"questions": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["id", "content", "question_type", "difficulty", "topic"],
					"properties": {
						"id":            {"type": "integer"},
						"content":       {"type": "string", "minLength": 1},
						"question_type": {"enum": ["choice", "text"]},
						"options":       {"type": "array", "items": {"type": "string"}},
						"difficulty":    {"type": "string", "minLength": 1},
						"topic":         {"type": "string", "minLength": 1}
					}
				}
			},
			"adaptive_logic": {
				"type": "object",
				"required": ["initial_difficulty", "adjustment_rules"],
				"properties": {
					"initial_difficulty": {"type": "string", "minLength": 1},
					"adjustment_rules": {
						"type": "object",
						"minProperties": 1,
						"additionalProperties": {"type": "string"}
					}
				}
			},
			"estimated_difficulty": {"type": "string", "minLength": 1},
			"topics_covered": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "minLength": 1}
			}
		}
	}`,

	feature.LearningAnalysis: `{
		"type": "object",
		"required": ["behavior_patterns", "strengths", "weaknesses", "recommendations", "optimal_content_types"],
		"properties": {
			"behavior_patterns":     {"type": "object", "additionalProperties": {"type": "string"}},
			"strengths":             {"type": "array", "items": {"type": "string"}},
			"weaknesses":            {"type": "array", "items": {"type": "string"}},
			"recommendations":       {"type": "array", "minItems": 1, "items": {"type": "string"}},
			"optimal_content_types": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}
