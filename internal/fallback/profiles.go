package fallback

import "github.com/learnpath/learnpath/internal/feature"

// profile is the template content for one topic family.
type profile struct {
	questions       []feature.Question
	weakAreas       []feature.WeakArea
	strengthAreas   []feature.StrengthArea
	shortTermGoals  []string
	longTermGoals   []string
	studyPath       string
	mistakes        []feature.CommonMistake
	exercises       []string
	materials       []string
	recommendations feature.Recommendations
}

func choice(content string, options []string, difficulty, topic string) feature.Question {
	return feature.Question{
		Content:      content,
		QuestionType: feature.QuestionChoice,
		Options:      options,
		Difficulty:   difficulty,
		Topic:        topic,
	}
}

func essay(content, difficulty, topic string) feature.Question {
	return feature.Question{
		Content:      content,
		QuestionType: feature.QuestionText,
		Difficulty:   difficulty,
		Topic:        topic,
	}
}

func rec(id int, title, kind string, score float64, explanation, approach string) feature.Recommendation {
	return feature.Recommendation{
		Content:            feature.ContentRef{ID: id, Title: title, Type: kind, MatchScore: score},
		Explanation:        explanation,
		ApproachSuggestion: approach,
	}
}

var profiles = map[Template]profile{
	Python: {
		questions: []feature.Question{
			choice("在Python中，以下哪个函数用于获取列表的长度？", []string{"len()", "length()", "size()", "count()"}, "beginner", "Python基础"),
			choice("以下哪个不是Python的基本数据类型？", []string{"array", "int", "float", "str"}, "beginner", "Python数据类型"),
		},
		weakAreas: []feature.WeakArea{
			{Topic: "函数与作用域", ConfidenceLevel: 0.38, SuggestedResources: []feature.Resource{
				{Type: "article", Title: "Python Scopes and Namespaces", URL: "https://docs.python.org/3/tutorial/classes.html#python-scopes-and-namespaces"},
				{Type: "exercise", Title: "函数与作用域练习"},
			}},
			{Topic: "面向对象编程", ConfidenceLevel: 0.45, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "Python面向对象入门"},
				{Type: "exercise", Title: "类与继承练习题"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "Python语法基础", ConfidenceLevel: 0.82}, {Topic: "列表与字典操作", ConfidenceLevel: 0.76}},
		shortTermGoals: []string{"每天完成3道函数练习", "复习变量作用域规则"},
		longTermGoals:  []string{"能够独立设计类层次结构", "完成一个完整的Python小项目"},
		studyPath:      "先巩固函数和作用域，再学习面向对象，最后通过小项目综合练习",
		mistakes: []feature.CommonMistake{
			{Topic: "缩进错误", Frequency: "High", Examples: []string{"混用制表符和空格", "代码块缩进不一致"}, Remediation: "统一使用4个空格缩进并开启编辑器的缩进提示"},
			{Topic: "可变默认参数", Frequency: "Medium", Examples: []string{"def f(items=[])", "默认字典在多次调用间共享"}, Remediation: "使用None作为默认值并在函数内部创建新对象"},
		},
		exercises: []string{"缩进与代码块练习", "函数参数专项练习"},
		materials: []string{"《Python编程：从入门到实践》", "Python官方教程"},
		recommendations: feature.Recommendations{
			rec(101, "Python交互式入门", "interactive", 0.92, "这个互动教程边学边练，帮助您快速掌握Python语法。", "每学完一节就在解释器里亲手运行示例代码。"),
			rec(102, "Python函数与模块", "video", 0.87, "视频课程通过示例讲解函数和模块的组织方式。", "观看时暂停并复现示例，再尝试修改参数观察结果。"),
			rec(103, "Python练习题集", "exercise", 0.85, "分级练习题帮助您巩固基础语法和常用数据结构。", "先独立完成，再对照参考答案总结常见错误。"),
		},
	},

	Database: {
		questions: []feature.Question{
			choice("以下哪个SQL语句用于从表中查询数据？", []string{"SELECT", "UPDATE", "INSERT", "DELETE"}, "beginner", "SQL基础"),
			choice("数据库事务的ACID特性中，I代表什么？", []string{"隔离性", "完整性", "索引", "迭代"}, "intermediate", "事务"),
		},
		weakAreas: []feature.WeakArea{
			{Topic: "多表连接查询", ConfidenceLevel: 0.36, SuggestedResources: []feature.Resource{
				{Type: "article", Title: "SQL JOIN 图解"},
				{Type: "exercise", Title: "多表查询练习"},
			}},
			{Topic: "索引与查询优化", ConfidenceLevel: 0.41, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "数据库索引原理"},
				{Type: "article", Title: "EXPLAIN 执行计划解读"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "基本增删改查", ConfidenceLevel: 0.84}, {Topic: "表结构设计", ConfidenceLevel: 0.7}},
		shortTermGoals: []string{"掌握四种JOIN的区别", "每周完成5道SQL查询题"},
		longTermGoals:  []string{"能够分析并优化慢查询", "独立完成符合范式的数据库设计"},
		studyPath:      "从单表查询过渡到多表连接，再学习索引和执行计划",
		mistakes: []feature.CommonMistake{
			{Topic: "JOIN条件遗漏", Frequency: "High", Examples: []string{"笛卡尔积导致结果行数暴增", "ON条件写错列"}, Remediation: "每次连接前先写出连接键并核对结果行数"},
			{Topic: "NULL值处理", Frequency: "Medium", Examples: []string{"使用 = NULL 判断空值", "聚合时忽略NULL的影响"}, Remediation: "使用IS NULL并复习聚合函数对NULL的处理规则"},
		},
		exercises: []string{"多表连接专项练习", "NULL值处理练习"},
		materials: []string{"《SQL必知必会》", "《数据库系统概念》"},
		recommendations: feature.Recommendations{
			rec(101, "SQL交互式练习场", "interactive", 0.9, "在线执行SQL并即时查看结果，适合边学边练。", "每个示例都修改一次查询条件，观察结果变化。"),
			rec(102, "数据库索引原理", "video", 0.86, "动画演示B+树索引的工作过程，帮助理解查询优化。", "观看后用EXPLAIN分析自己写过的查询。"),
			rec(103, "数据库设计实战", "exercise", 0.83, "从需求出发设计表结构，练习范式和约束。", "先画出实体关系图，再编写建表语句。"),
		},
	},

	Data: {
		questions: []feature.Question{
			essay("什么是数据规范化？", "intermediate", "数据处理"),
			choice("以下哪个库最适合Python数据分析？", []string{"pandas", "flask", "django", "pygame"}, "beginner", "数据分析工具"),
		},
		weakAreas: []feature.WeakArea{
			{Topic: "数据清洗", ConfidenceLevel: 0.37, SuggestedResources: []feature.Resource{
				{Type: "article", Title: "pandas 缺失值处理"},
				{Type: "exercise", Title: "数据清洗实战练习"},
			}},
			{Topic: "统计基础", ConfidenceLevel: 0.44, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "描述性统计入门"},
				{Type: "quiz", Title: "统计概念测验"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "数据读取与导出", ConfidenceLevel: 0.8}, {Topic: "基础可视化", ConfidenceLevel: 0.72}},
		shortTermGoals: []string{"熟练处理缺失值和重复值", "完成一次完整的数据清洗流程"},
		longTermGoals:  []string{"能够独立完成探索性数据分析", "掌握常用统计检验方法"},
		studyPath:      "先掌握数据清洗和整理，再学习统计基础，最后做完整的数据分析项目",
		mistakes: []feature.CommonMistake{
			{Topic: "缺失值处理", Frequency: "High", Examples: []string{"直接删除大量缺失行", "用0填充所有缺失值"}, Remediation: "先分析缺失原因，再选择删除、填充或插值"},
			{Topic: "数据类型转换", Frequency: "Medium", Examples: []string{"数字被读取为字符串", "日期格式解析错误"}, Remediation: "读取数据后先检查每列的类型并显式转换"},
		},
		exercises: []string{"缺失值处理练习", "数据类型检查练习"},
		materials: []string{"《利用Python进行数据分析》", "pandas官方文档"},
		recommendations: feature.Recommendations{
			rec(101, "数据分析入门实验", "interactive", 0.91, "交互式笔记本让您一步步完成数据分析流程。", "逐个单元运行并记录每一步数据的变化。"),
			rec(102, "数据可视化基础", "video", 0.87, "视频通过图表示例讲解如何展示数据规律。", "观看后用自己的数据复现一张图表。"),
			rec(103, "数据清洗练习集", "exercise", 0.84, "真实数据集上的清洗练习，覆盖常见脏数据问题。", "先列出数据问题清单，再逐项处理。"),
		},
	},

	Web: {
		questions: []feature.Question{
			choice("以下哪个HTML标签用于创建超链接？", []string{"<a>", "<link>", "<href>", "<url>"}, "beginner", "HTML基础"),
			choice("CSS中哪个属性用于设置弹性布局？", []string{"display: flex", "position: flex", "float: flex", "layout: flex"}, "beginner", "CSS布局"),
		},
		weakAreas: []feature.WeakArea{
			{Topic: "CSS布局", ConfidenceLevel: 0.39, SuggestedResources: []feature.Resource{
				{Type: "interactive", Title: "Flexbox Froggy"},
				{Type: "article", Title: "CSS Grid 完全指南"},
			}},
			{Topic: "异步JavaScript", ConfidenceLevel: 0.43, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "Promise 与 async/await"},
				{Type: "exercise", Title: "异步请求练习"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "HTML语义结构", ConfidenceLevel: 0.83}, {Topic: "基础样式", ConfidenceLevel: 0.74}},
		shortTermGoals: []string{"用Flexbox完成三个页面布局", "理解事件循环的基本概念"},
		longTermGoals:  []string{"独立完成响应式网站", "掌握一个主流前端框架"},
		studyPath:      "先掌握HTML和CSS布局，再学习JavaScript异步编程，最后学习前端框架",
		mistakes: []feature.CommonMistake{
			{Topic: "盒模型理解", Frequency: "High", Examples: []string{"忽略padding导致宽度溢出", "margin合并造成间距异常"}, Remediation: "使用box-sizing: border-box并借助开发者工具检查盒模型"},
			{Topic: "异步回调顺序", Frequency: "Medium", Examples: []string{"在请求返回前使用数据", "忘记await"}, Remediation: "统一使用async/await并在数据就绪后再渲染"},
		},
		exercises: []string{"盒模型调试练习", "异步请求练习"},
		materials: []string{"MDN Web 文档", "《JavaScript高级程序设计》"},
		recommendations: feature.Recommendations{
			rec(101, "前端布局互动教程", "interactive", 0.9, "通过可视化小游戏练习CSS布局，直观易懂。", "每关完成后尝试用另一种布局方式实现。"),
			rec(102, "JavaScript异步编程", "video", 0.86, "动画演示事件循环，帮助理解异步执行顺序。", "边看边在浏览器控制台运行示例。"),
			rec(103, "响应式网页实战", "exercise", 0.84, "从零搭建一个适配移动端的页面。", "先完成桌面布局，再逐步添加媒体查询。"),
		},
	},

	AI: {
		questions: []feature.Question{
			choice("以下哪种属于监督学习任务？", []string{"图像分类", "聚类", "降维", "关联规则挖掘"}, "beginner", "机器学习基础"),
			choice("训练集准确率高而测试集准确率低，通常说明什么？", []string{"过拟合", "欠拟合", "数据泄漏已解决", "模型收敛过慢"}, "intermediate", "模型评估"),
		},
		weakAreas: []feature.WeakArea{
			{Topic: "模型评估", ConfidenceLevel: 0.36, SuggestedResources: []feature.Resource{
				{Type: "article", Title: "交叉验证与评估指标"},
				{Type: "exercise", Title: "混淆矩阵计算练习"},
			}},
			{Topic: "线性代数基础", ConfidenceLevel: 0.42, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "线性代数的本质"},
				{Type: "quiz", Title: "矩阵运算测验"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "机器学习概念", ConfidenceLevel: 0.78}, {Topic: "Python数据处理", ConfidenceLevel: 0.75}},
		shortTermGoals: []string{"理解准确率、召回率和F1的区别", "完成一次交叉验证实验"},
		longTermGoals:  []string{"能够独立训练并调优一个分类模型", "理解神经网络的基本原理"},
		studyPath:      "先补齐数学基础，再学习经典机器学习算法，最后进入深度学习",
		mistakes: []feature.CommonMistake{
			{Topic: "数据泄漏", Frequency: "High", Examples: []string{"在划分数据集前做标准化", "测试集参与特征选择"}, Remediation: "先划分数据集，再只在训练集上拟合预处理步骤"},
			{Topic: "评估指标选择", Frequency: "Medium", Examples: []string{"类别不平衡时只看准确率", "回归任务使用分类指标"}, Remediation: "根据任务类型和数据分布选择合适的评估指标"},
		},
		exercises: []string{"数据集划分练习", "评估指标计算练习"},
		materials: []string{"《机器学习》（周志华）", "scikit-learn 用户指南"},
		recommendations: feature.Recommendations{
			rec(101, "机器学习可视化实验", "interactive", 0.91, "通过交互式图形观察模型如何划分决策边界。", "调整参数并记录决策边界的变化。"),
			rec(102, "神经网络入门", "video", 0.87, "动画讲解前向传播和反向传播的过程。", "看完后手算一个两层网络的梯度。"),
			rec(103, "分类模型实战", "exercise", 0.84, "在真实数据集上完成从清洗到评估的完整流程。", "先建立简单基线模型，再逐步改进。"),
		},
	},

	Generic: {
		weakAreas: []feature.WeakArea{
			{Topic: "数据结构", ConfidenceLevel: 0.35, SuggestedResources: []feature.Resource{
				{Type: "video", Title: "Data Structures Fundamentals", URL: "https://example.com/ds101"},
				{Type: "exercise", Title: "Data Structures Practice Problems", URL: "https://example.com/ds-practice"},
			}},
			{Topic: "算法复杂度分析", ConfidenceLevel: 0.42, SuggestedResources: []feature.Resource{
				{Type: "article", Title: "Introduction to Complexity Analysis", URL: "https://example.com/complexity-intro"},
				{Type: "quiz", Title: "Algorithm Complexity Quiz", URL: "https://example.com/complexity-quiz"},
			}},
		},
		strengthAreas:  []feature.StrengthArea{{Topic: "编程基础", ConfidenceLevel: 0.85}, {Topic: "Web开发", ConfidenceLevel: 0.78}},
		shortTermGoals: []string{"完成数据结构基础课程", "每周解决5道算法题"},
		longTermGoals:  []string{"掌握高级数据结构", "能够独立分析算法复杂度"},
		studyPath:      "先巩固基础知识，再通过实践加深理解",
		mistakes: []feature.CommonMistake{
			{Topic: "Loop Control", Frequency: "High", Examples: []string{"Boundary condition errors", "Infinite loops"}, Remediation: "Review loop basics, focusing on boundary conditions"},
			{Topic: "Variable Scope", Frequency: "Medium", Examples: []string{"Using undefined variables", "Scope confusion"}, Remediation: "Learn variable declaration and scope rules"},
		},
		exercises: []string{"边界条件测试编写", "作用域练习"},
		materials: []string{"《变量作用域详解》", "《循环控制进阶》"},
		recommendations: feature.Recommendations{
			rec(101, "视觉编程入门", "interactive", 0.92, "这个互动编程教程使用大量视觉元素，非常适合您的视觉学习偏好。", "尝试完成所有视觉练习，并创建自己的流程图来巩固所学知识。"),
			rec(102, "算法可视化", "video", 0.87, "这个视频课程通过动画展示算法工作原理，适合您的视觉学习风格。", "观看视频时尝试在纸上跟随绘制算法流程，加深理解。"),
			rec(103, "数据结构实战", "exercise", 0.85, "这套练习题包含丰富的图表和视觉辅助，帮助您更好地理解数据结构。", "先理解视觉图表，再尝试独立解决问题，最后核对答案。"),
		},
	},
}

// mistakePatterns is shared by every mistake-analysis template.
var mistakePatterns = map[string]string{
	"time_of_day":            "Higher error rates during evening study sessions",
	"subject_correlation":    "Higher error rates in data structure problems",
	"difficulty_correlation": "Higher error rates in medium-to-hard difficulty problems",
}
