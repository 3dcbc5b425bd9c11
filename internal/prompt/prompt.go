// Package prompt renders the model request for each feature.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/goccy/go-json"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/llm"
)

const systemPrompt = `你是一个教育平台的学习分析助手，为学生生成个性化的学习分析和学习内容。

规则:
- 只返回有效的JSON，不要在JSON前后添加解释文字。
- 严格使用要求的字段名，字段值使用要求的类型。
- 数值型评分使用数字，不要使用字符串。
- 内容应当具体、可执行，并与给定的主题相关。`

// learningAnalysisModel is the model the learning analysis prompt was tuned
// for on the zhipu platform.
const learningAnalysisModel = "glm-4"

// Builder renders feature requests into model requests.
type Builder struct {
	provider string
}

// NewBuilder returns a Builder for the named provider. The provider only
// affects per-feature model hints.
func NewBuilder(provider string) *Builder {
	return &Builder{provider: provider}
}

// Build renders the prompt for req.
func (b *Builder) Build(req feature.Request) (llm.Request, error) {
	tmpl, ok := templates[req.Feature]
	if !ok {
		return llm.Request{}, fmt.Errorf("no prompt template for feature %q", req.Feature)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newData(req)); err != nil {
		return llm.Request{}, fmt.Errorf("render %s prompt: %w", req.Feature, err)
	}

	out := llm.UserPrompt(systemPrompt, buf.String())
	// Recommendations are a top-level array, which JSON object mode cannot
	// express.
	out.JSONMode = req.Feature != feature.ContentRecommendation
	out.Model = b.ModelHint(req.Feature)
	return out, nil
}

// ModelHint returns the per-call model override for f, or "" to use the
// configured model.
func (b *Builder) ModelHint(f feature.Feature) string {
	if f == feature.LearningAnalysis && b.provider == llm.ProviderZhipu {
		return learningAnalysisModel
	}
	return ""
}

// data is the template context.
type data struct {
	Topic      string
	Subject    string
	Difficulty string
	Limit      int
	payload    feature.Payload
}

func newData(req feature.Request) data {
	return data{
		Topic:      req.Topic(),
		Subject:    req.Subject(),
		Difficulty: req.Difficulty(),
		Limit:      req.EffectiveLimit(),
		payload:    req.Payload,
	}
}

// Field returns a payload value as text, or def.
func (d data) Field(key, def string) string {
	return d.payload.String(key, def)
}

// JSON returns a payload value as compact JSON, or def when absent.
func (d data) JSON(key, def string) string {
	v, ok := d.payload.Raw(key)
	if !ok || v == nil {
		return def
	}
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return def
	}
	return string(b)
}

// Has reports whether the payload carries a non-empty value for key.
func (d data) Has(key string) bool {
	v, ok := d.payload.Raw(key)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

var templates = map[feature.Feature]*template.Template{
	feature.LearningStyle: mustParse("learning_style", `基于以下用户的评估回答，分析他们的学习风格偏好。回答应包含视觉、听觉、动觉和阅读方面的得分，以及最适合该用户的学习方式。

用户回答:
{{.JSON "responses" "[]"}}

请以JSON格式返回分析结果，包含以下字段:
- visual_score: 视觉学习得分(0-100)
- auditory_score: 听觉学习得分(0-100)
- kinesthetic_score: 动觉学习得分(0-100)
- reading_score: 阅读学习得分(0-100)
- dominant_style: 主导学习风格(visual、auditory、kinesthetic或reading)
- secondary_style: 次要学习风格(同上)
`),

	feature.ContentRecommendation: mustParse("content_recommendation", `为用户ID {{.Field "user_id" "未知"}} 生成{{.Limit}}条学习内容推荐。
{{if .Has "subject"}}学科领域: {{.Subject}}
{{end}}{{if .Has "learning_style"}}学习风格: {{.JSON "learning_style" "{}"}}
{{end}}{{if .Has "catalog"}}
可选内容（只能从以下内容中选择，使用其id）:
{{.JSON "catalog" "[]"}}
{{end}}
推荐应该包括:
- 内容ID
- 标题
- 类型
- 匹配度评分(0-1)
- 推荐理由
- 学习建议

以JSON数组格式返回，每个元素的格式如下:
[
  {
    "content": {"id": 101, "title": "内容标题", "type": "video", "match_score": 0.9},
    "explanation": "推荐理由",
    "approach_suggestion": "学习建议"
  }
]
`),

	feature.WeaknessAnalysis: mustParse("weakness_analysis", `分析以下学生的学习数据，识别他们的弱点和优势，并提供改进计划:

用户ID: {{.Field "user_id" "未知"}}
主题: {{.Topic}}
学习记录: {{.JSON "learning_records" "[]"}}
测验成绩: {{.JSON "quiz_scores" "{}"}}
内容互动: {{.JSON "content_interactions" "{}"}}

以JSON格式返回分析结果，格式如下:
{
  "weak_areas": [
    {
      "topic": "主题名称",
      "confidence_level": 0.35,
      "suggested_resources": [
        {"type": "资源类型", "title": "资源标题", "url": "资源链接"}
      ]
    }
  ],
  "strength_areas": [
    {"topic": "主题名称", "confidence_level": 0.85}
  ],
  "improvement_plan": {
    "short_term_goals": ["短期目标1", "短期目标2"],
    "long_term_goals": ["长期目标1", "长期目标2"],
    "recommended_study_path": "推荐学习路径描述"
  }
}
`),

	feature.MistakeAnalysis: mustParse("mistake_analysis", `分析以下学生的错误数据，识别常见错误模式，并提供改进建议:

用户ID: {{.Field "user_id" "未知"}}
主题: {{.Topic}}
错误记录: {{.JSON "error_records" "[]"}}
测验答案: {{.JSON "quiz_answers" "{}"}}
学习时间分布: {{.JSON "study_time_distribution" "{}"}}

请提供:
1. 常见错误类型和频率
2. 错误模式的分析（时间相关、主题相关、难度相关）
3. 改进计划和建议的学习材料

以JSON格式返回分析结果，格式如下:
{
  "common_mistakes": [
    {
      "topic": "错误主题",
      "frequency": "频率描述",
      "examples": ["示例1", "示例2"],
      "remediation": "改进建议"
    }
  ],
  "mistake_patterns": {
    "time_of_day": "时间相关模式",
    "subject_correlation": "主题相关模式",
    "difficulty_correlation": "难度相关模式"
  },
  "remediation_plan": {
    "focus_areas": ["重点领域1", "重点领域2"],
    "suggested_exercises": ["建议练习1", "建议练习2"],
    "learning_materials": ["学习材料1", "学习材料2"]
  }
}
`),

	feature.AdaptiveTest: mustParse("adaptive_test", `为以下用户创建一个自适应测试:

用户ID: {{.Field "user_id" "未知"}}
学科: {{.Subject}}
主题: {{.Topic}}
初始难度: {{.Difficulty}}

请创建一个包含5-8个问题的测试，包含选择题和简答题。每个问题应包含:
1. 问题ID
2. 问题内容
3. 问题类型(choice或text)
4. 选项列表(如果是选择题)
5. 难度级别
6. 涉及的主题

返回JSON格式结果:
{
  "questions": [
    {
      "id": 1,
      "content": "问题内容",
      "question_type": "choice",
      "options": ["选项A", "选项B", "选项C", "选项D"],
      "difficulty": "beginner",
      "topic": "具体主题"
    }
  ],
  "adaptive_logic": {
    "initial_difficulty": "beginner",
    "adjustment_rules": {
      "correct_answer": "增加难度",
      "incorrect_answer": "降低难度"
    }
  },
  "estimated_difficulty": "beginner",
  "topics_covered": ["主题1", "主题2"]
}
`),

	feature.LearningAnalysis: mustParse("learning_analysis", `我有一个学生的学习行为数据，请分析并提供见解:

学习时间: {{.Field "study_time" "未知"}}分钟
内容完成率: {{.Field "completion_rate" "未知"}}%
互动次数: {{.Field "interactions" "未知"}}次
主要内容类型: {{.JSON "content_types" "[\"未知\"]"}}

请提供以下分析:
1. 学习模式和习惯
2. 优势和待改进的方面
3. 提高学习效率的建议
4. 适合该学习者的内容类型推荐

以JSON格式返回，包含以下字段:
- behavior_patterns: 行为模式对象，键和值都是字符串
- strengths: 优势列表
- weaknesses: 弱点列表
- recommendations: 建议列表
- optimal_content_types: 最适合的内容类型列表
`),
}
