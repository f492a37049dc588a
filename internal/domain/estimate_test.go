package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyComplexity(t *testing.T) {
	tests := []struct {
		name string
		task TaskNode
		want Complexity
	}{
		{"high keyword", TaskNode{Name: "Refactor storage"}, ComplexityHigh},
		{"high keyword substring", TaskNode{Name: "DB migrations"}, ComplexityHigh},
		{"many files", TaskNode{Name: "Tweak", Files: []string{"a", "b", "c", "d"}}, ComplexityHigh},
		{"medium keyword", TaskNode{Name: "Add button"}, ComplexityMedium},
		{"two files", TaskNode{Name: "Tweak", Files: []string{"a", "b"}}, ComplexityMedium},
		{"medium keyword with many files", TaskNode{Name: "Create form", Files: []string{"a", "b", "c", "d"}}, ComplexityHigh},
		{"low", TaskNode{Name: "Fix typo", Files: []string{"a"}}, ComplexityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyComplexity(tt.task))
		})
	}
}

func TestEstimateTask_Breakdown(t *testing.T) {
	task := TaskNode{
		Name:      "Fix typo",
		Spec:      strings.Repeat("x", 11),
		ReadFirst: []string{"README.md"},
		Files:     []string{"main.go"},
	}
	e := EstimateTask(task, strings.Repeat("c", 400), 60000)

	assert.Equal(t, 15000, e.BaseOverhead)
	assert.Equal(t, 100, e.ContextTokens)
	assert.Equal(t, 5, e.TaskTokens)
	assert.Equal(t, 5000, e.FileReads)
	assert.Equal(t, ComplexityLow, e.Complexity)
	assert.Equal(t, 4000, e.ToolCalls)
	assert.Equal(t, 12000, e.Buffer)
	assert.Equal(t, 36105, e.Total)
	assert.True(t, e.Fits)
	assert.InDelta(t, 60.2, e.Utilization, 0.0001)
}

func TestEstimateTask_Oversized(t *testing.T) {
	e := EstimateTask(TaskNode{Name: "Rewrite everything"}, strings.Repeat("c", 200000), 60000)
	assert.False(t, e.Fits)
	assert.Greater(t, e.Utilization, 100.0)
}

func TestEstimateTask_DefaultTarget(t *testing.T) {
	e := EstimateTask(TaskNode{Name: "x"}, "", 0)
	assert.Equal(t, DefaultTargetTokens, e.Target)
}

func TestEstimateTask_MonotonicInFiles(t *testing.T) {
	task := TaskNode{Name: "Polish"}
	prev := EstimateTask(task, "ctx", 60000)
	for i := 1; i <= 8; i++ {
		task.Files = append(task.Files, "f")
		cur := EstimateTask(task, "ctx", 60000)
		assert.GreaterOrEqual(t, cur.FileReads, prev.FileReads)
		assert.GreaterOrEqual(t, cur.Total, prev.Total)
		prev = cur
	}
}
