package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	tree := Tree{Name: "Shop", Context: "An online shop", Children: []TaskNode{
		{Name: "Cart", Status: StatusPending, Context: "Cart lives in memory", Children: []TaskNode{
			{Name: "Add item", Status: StatusPending},
		}},
		{Name: "Silent", Status: StatusPending, Children: []TaskNode{{Name: "x", Status: StatusPending}}},
	}}

	got := BuildContext(tree, Path{"Shop", "Cart", "Add item"}, "Be fast")
	assert.Equal(t, "# Project Requirements\nBe fast\n\n# Shop\nAn online shop\n\n# Cart\nCart lives in memory", got)

	got = BuildContext(tree, Path{"Shop", "Silent", "x"}, "")
	assert.Equal(t, "# Shop\nAn online shop", got)

	assert.Equal(t, "", BuildContext(NewTree("Empty"), Path{"Empty"}, "  "))
}

func TestRenderTaskPrompt(t *testing.T) {
	task := TaskNode{
		Name:       "Add item",
		Spec:       "Support quantity",
		ReadFirst:  []string{"cart.go"},
		Files:      []string{"cart.go", "cart_test.go"},
		Acceptance: []string{"go test ./cart"},
	}
	est := EstimateTask(task, "ctx", 60000)
	out := RenderTaskPrompt(TaskPromptData{Task: task, Context: "ctx", Estimate: &est})

	for _, want := range []string{
		strings.Repeat("=", 60) + "\nTASK\n",
		"## Task: Add item",
		"## Read First (MANDATORY)\nBefore coding, read these files to understand existing patterns:\n\n- cart.go",
		"## Spec\nSupport quantity",
		"**Files to modify:** cart.go, cart_test.go",
		"**Acceptance criteria:** go test ./cart",
		"**Estimate:** ~" + FormatThousands(est.Total) + " tokens",
		"of 60,000) [OK]",
		"**Complexity:** medium",
		"## Context\nctx",
		"## Before Marking Done (REQUIRED)",
	} {
		assert.Contains(t, out, want)
	}

	bare := RenderTaskPrompt(TaskPromptData{Task: TaskNode{Name: "Bare"}})
	assert.NotContains(t, bare, "Read First")
	assert.NotContains(t, bare, "**Estimate:**")
	assert.NotContains(t, bare, "## Context")
}

func TestRenderWorkerPrompt(t *testing.T) {
	w := Worker{ID: 2, Branch: "ralph/add-item", Task: "Add item", Path: "Shop.Cart.Add item", Status: WorkerAssigned}
	out := RenderWorkerPrompt(WorkerPromptData{Worker: w, Task: TaskNode{Name: "Add item"}, Context: "ctx"})

	for _, want := range []string{
		"You are Worker 2. Your job is to complete ONE task on a dedicated branch.",
		"git checkout main\ngit pull origin main\ngit checkout -b ralph/add-item",
		"## Your Task\nAdd item",
		"## Files to modify\nDetermine based on task",
		"## Acceptance criteria\n- Code works and passes type checks",
		"1. Run acceptance checks: tests pass",
		`git commit -m "Add item"`,
		"git push -u origin ralph/add-item",
		`Then say: "Worker 2 complete. Pushed to ralph/add-item"`,
	} {
		assert.Contains(t, out, want)
	}

	lane := RenderWorkerPrompt(WorkerPromptData{
		Worker:   w,
		Task:     TaskNode{Name: "Add item", Acceptance: []string{"go test", "go vet"}},
		Worktree: "/repo/.ralph/worktrees/2",
	})
	assert.Contains(t, lane, "cd /repo/.ralph/worktrees/2")
	assert.NotContains(t, lane, "git checkout -b")
	assert.Contains(t, lane, "## Acceptance criteria\n- go test\n- go vet")
}

func TestRenderFixPrompt(t *testing.T) {
	out := RenderFixPrompt(FixRequest{FilePath: "src/app.py", Content: "print(1)", ErrorLog: "boom", TaskContext: "ctx"})
	assert.Contains(t, out, "### FILE TO FIX: src/app.py")
	assert.Contains(t, out, "```python\nprint(1)\n```")
	assert.Contains(t, out, "### ERROR LOG\nboom")
	assert.Contains(t, out, "Return ONLY the complete fixed file content")
}

func TestRenderPlanAndCodePrompts(t *testing.T) {
	plan := RenderPlanPrompt(PlanRequest{ProjectName: "Shop", Requirements: "sell things"})
	assert.Contains(t, plan, `"name": "Shop"`)
	assert.Contains(t, plan, "~60,000 tokens")

	code := RenderCodePrompt(CodeRequest{Task: TaskNode{Name: "Add item"}, Target: "cart.go"})
	assert.Contains(t, code, "Spec: No spec provided")
	assert.Contains(t, code, "No context files.")
	assert.Contains(t, code, "complete contents of cart.go")

	code = RenderCodePrompt(CodeRequest{Task: TaskNode{Name: "Add item"}, Target: "cart.go", References: []FileExcerpt{{Path: "a.go", Content: "package a"}}})
	assert.Contains(t, code, "=== a.go ===\npackage a")
}

func TestRenderGovernPrompt(t *testing.T) {
	out := RenderGovernPrompt(GovernPromptData{Requirements: "req", TreeJSON: "{}", TreeFile: "tree.json", TargetTokens: 60000})
	assert.Contains(t, out, "~60,000 tokens / ~300 lines")
	assert.Contains(t, out, "## Requirements\nreq")
	assert.Contains(t, out, "## Current Tree\n{}")
}

func TestEstimateRow(t *testing.T) {
	e := Estimate{Utilization: 45.2, Complexity: ComplexityMedium, Fits: true}
	assert.Equal(t, "[OK  ]  45.2% | medium | Add item", EstimateRow("Add item", e))
	e.Fits = false
	e.Utilization = 120
	assert.Equal(t, "[OVER] 120.0% | medium | "+strings.Repeat("n", 50), EstimateRow(strings.Repeat("n", 60), e))
	assert.Equal(t, "Status   Util | Cmplx  | Task", EstimateHeader())
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", FormatThousands(0))
	assert.Equal(t, "999", FormatThousands(999))
	assert.Equal(t, "60,000", FormatThousands(60000))
	assert.Equal(t, "1,234,567", FormatThousands(1234567))
	assert.Equal(t, "-1,000", FormatThousands(-1000))
}

func TestMergeInstructions(t *testing.T) {
	out := MergeInstructions("", []string{"ralph/a", "ralph/b"})
	assert.Contains(t, out, "  git merge ralph/a\n  git merge ralph/b\n")
	assert.Contains(t, out, "ralph done-all")

	single := SingleMergeInstructions("develop", "ralph/a")
	assert.Contains(t, single, "git checkout develop")
	assert.Contains(t, single, "git branch -d ralph/a")
}
