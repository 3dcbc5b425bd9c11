package scoring

import "github.com/learnpath/learnpath/internal/feature"

var styleSuggestions = map[string][]string{
	feature.StyleVisual: {
		"使用图表、图像和视频来增强学习",
		"为复杂概念创建思维导图",
		"使用颜色标记重要信息",
		"寻找包含丰富视觉元素的学习材料",
	},
	feature.StyleAuditory: {
		"录制自己朗读笔记并回放",
		"参加讨论组和研讨会",
		"使用有声书和播客学习",
		"向他人解释所学内容以加深理解",
	},
	feature.StyleKinesthetic: {
		"通过实际操作学习新概念",
		"使用动手项目来应用理论知识",
		"学习时适当活动以保持注意力",
		"建立与现实世界的联系以理解抽象概念",
	},
	feature.StyleReading: {
		"创建详细的书面笔记",
		"阅读丰富的文本资料",
		"使用列表和大纲组织信息",
		"定期回顾并重写笔记以加深理解",
	},
}

var mixedSuggestions = []string{
	"尝试不同的学习方法，找出最适合你的方式",
	"组合使用视觉、听觉和动手材料",
	"定期回顾学习内容加深理解",
	"在实际项目中应用所学知识",
}

var generalSuggestions = []string{
	"定期评估学习风格，确认其随时间的变化",
	"尝试结合不同学习方法，增强学习效果",
	"为学习设定具体目标和时间表",
}

// Suggestions returns study tips for a dominant style followed by general
// tips. An unknown or empty style gets the mixed-method tips.
func Suggestions(dominant string) []string {
	specific, ok := styleSuggestions[dominant]
	if !ok {
		specific = mixedSuggestions
	}
	out := make([]string, 0, len(specific)+len(generalSuggestions))
	out = append(out, specific...)
	return append(out, generalSuggestions...)
}

// StyleItem is a rule-based content suggestion for an assessment result.
type StyleItem struct {
	ContentType string  `json:"content_type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MatchScore  float64 `json:"match_score"`
}

var styleItems = map[string][]StyleItem{
	feature.StyleVisual: {
		{"video", "图解编程基础", "通过可视化图表和动画学习编程基础", 0.92},
		{"interactive", "可视化算法演示", "交互式算法可视化工具", 0.88},
	},
	feature.StyleAuditory: {
		{"audio", "编程概念播客", "通过讨论和对话学习编程概念", 0.90},
		{"video", "编程讲座系列", "详细讲解编程概念的视频讲座", 0.85},
	},
	feature.StyleKinesthetic: {
		{"interactive", "动手编程实验室", "通过实际操作学习编程", 0.94},
		{"exercise", "编程挑战集", "解决实际编程问题的练习", 0.89},
	},
	feature.StyleReading: {
		{"article", "编程概念详解", "深入解释编程概念的文章集", 0.91},
		{"tutorial", "深入理解数据结构", "文本教程和示例代码", 0.87},
	},
}

// StyleRecommendations returns the fixed content suggestions for a dominant
// style. Anything other than visual, auditory or kinesthetic is treated as
// reading.
func StyleRecommendations(dominant string) []StyleItem {
	items, ok := styleItems[dominant]
	if !ok {
		items = styleItems[feature.StyleReading]
	}
	return append([]StyleItem(nil), items...)
}
