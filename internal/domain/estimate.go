package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Token estimation constants.
const (
	DefaultTargetTokens = 60000 // Context budget per task
	TokensPerChar       = 0.25  // ~4 chars per token
	BaseOverhead        = 15000 // System prompt, tool definitions
	TokensPerFile       = 2500  // Average file read
	TokensPerToolCall   = 500   // Average tool call overhead
	BufferRatio         = 0.2   // Share of the target reserved for the response
)

// Complexity is the advisory sizing class of a task.
type Complexity string

// Complexity levels.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ToolCallMultiplier returns the expected number of tool calls for the complexity.
func (c Complexity) ToolCallMultiplier() int {
	switch c {
	case ComplexityHigh:
		return 25
	case ComplexityMedium:
		return 15
	default:
		return 8
	}
}

var (
	highComplexityKeywords = []string{
		"refactor", "rewrite", "migrate", "integration",
		"architecture", "security", "performance", "optimization",
	}
	mediumComplexityKeywords = []string{
		"implement", "create", "build", "add", "feature", "endpoint", "component",
	}
)

// ClassifyComplexity derives complexity from the task name and its file count.
// Keywords are matched as substrings of the lowercased name.
func ClassifyComplexity(task TaskNode) Complexity {
	name := strings.ToLower(task.Name)
	files := len(task.Files)
	switch {
	case containsAny(name, highComplexityKeywords):
		return ComplexityHigh
	case files > 3:
		return ComplexityHigh
	case containsAny(name, mediumComplexityKeywords), files > 1:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Estimate is the token budget breakdown for one task.
// Fields are ordered to minimize memory padding.
type Estimate struct {
	Complexity    Complexity
	Utilization   float64 // Percent of target, one decimal place
	BaseOverhead  int
	ContextTokens int
	TaskTokens    int
	FileReads     int
	ToolCalls     int
	Buffer        int
	Total         int
	Target        int
	Fits          bool
}

// EstimateTask estimates the context budget a task needs given the
// accumulated context. A non-positive target falls back to DefaultTargetTokens.
func EstimateTask(task TaskNode, context string, target int) Estimate {
	if target <= 0 {
		target = DefaultTargetTokens
	}
	taskText := task.Name
	if task.Spec != "" {
		taskText += "\n" + task.Spec
	}
	complexity := ClassifyComplexity(task)

	e := Estimate{
		Complexity:    complexity,
		BaseOverhead:  BaseOverhead,
		ContextTokens: charTokens(context),
		TaskTokens:    charTokens(taskText),
		FileReads:     (len(task.ReadFirst) + len(task.Files)) * TokensPerFile,
		ToolCalls:     complexity.ToolCallMultiplier() * TokensPerToolCall,
		Buffer:        int(float64(target) * BufferRatio),
		Target:        target,
	}
	e.Total = e.BaseOverhead + e.ContextTokens + e.TaskTokens + e.FileReads + e.ToolCalls + e.Buffer
	e.Fits = e.Total <= target
	e.Utilization = math.Round(float64(e.Total)/float64(target)*1000) / 10
	return e
}

func charTokens(s string) int {
	return int(float64(utf8.RuneCountInString(s)) * TokensPerChar)
}
