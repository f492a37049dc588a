package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

//go:embed prompt_task.md
var taskPromptTmpl string

//go:embed prompt_worker.md
var workerPromptTmpl string

//go:embed prompt_govern.md
var governPromptTmpl string

//go:embed prompt_fix.md
var fixPromptTmpl string

//go:embed prompt_plan.md
var planPromptTmpl string

//go:embed prompt_code.md
var codePromptTmpl string

var promptFuncs = template.FuncMap{
	"join":      strings.Join,
	"thousands": FormatThousands,
	"rule":      func() string { return strings.Repeat("=", 60) },
}

var (
	taskPrompt   = template.Must(template.New("task").Funcs(promptFuncs).Parse(taskPromptTmpl))
	workerPrompt = template.Must(template.New("worker").Funcs(promptFuncs).Parse(workerPromptTmpl))
	governPrompt = template.Must(template.New("govern").Funcs(promptFuncs).Parse(governPromptTmpl))
	fixPrompt    = template.Must(template.New("fix").Funcs(promptFuncs).Parse(fixPromptTmpl))
	planPrompt   = template.Must(template.New("plan").Funcs(promptFuncs).Parse(planPromptTmpl))
	codePrompt   = template.Must(template.New("code").Funcs(promptFuncs).Parse(codePromptTmpl))
)

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are embedded and data types are fixed.
		panic(fmt.Sprintf("render %s prompt: %v", tmpl.Name(), err))
	}
	return buf.String()
}

// TaskPromptData holds data for the single-agent task prompt.
type TaskPromptData struct {
	Estimate *Estimate // nil hides the estimate lines
	Context  string
	Task     TaskNode
}

// RenderTaskPrompt renders the prompt printed by `next`.
func RenderTaskPrompt(data TaskPromptData) string {
	return render(taskPrompt, data)
}

// WorkerPromptData holds data for a worker lane prompt.
type WorkerPromptData struct {
	BaseBranch string
	Context    string
	Worktree   string // Set when the lane runs in its own worktree
	Task       TaskNode
	Worker     Worker
}

// RenderWorkerPrompt renders the copy-paste prompt for one worker lane.
func RenderWorkerPrompt(data WorkerPromptData) string {
	if data.BaseBranch == "" {
		data.BaseBranch = "main"
	}
	return render(workerPrompt, data)
}

// GovernPromptData holds data for the tree review prompt.
type GovernPromptData struct {
	Requirements string
	TreeJSON     string
	TreeFile     string
	TargetTokens int
}

// RenderGovernPrompt renders the tree review prompt.
func RenderGovernPrompt(data GovernPromptData) string {
	return render(governPrompt, data)
}

// FixRequest is everything a provider needs to repair one file.
type FixRequest struct {
	FilePath    string
	Content     string
	ErrorLog    string
	TaskContext string
}

// Language returns the code fence hint for the file.
func (r FixRequest) Language() string {
	return fenceLanguage(r.FilePath)
}

// RenderFixPrompt renders the repair prompt.
func RenderFixPrompt(req FixRequest) string {
	return render(fixPrompt, req)
}

// PlanRequest asks a provider to decompose requirements into a tree.
type PlanRequest struct {
	ProjectName  string
	Requirements string
	TargetTokens int
}

// RenderPlanPrompt renders the planning prompt.
func RenderPlanPrompt(req PlanRequest) string {
	if req.TargetTokens <= 0 {
		req.TargetTokens = DefaultTargetTokens
	}
	return render(planPrompt, req)
}

// FileExcerpt is a reference file included in a code generation prompt.
type FileExcerpt struct {
	Path    string
	Content string
}

// CodeRequest asks a provider to write the content of one file for a task.
type CodeRequest struct {
	Context    string
	Target     string
	References []FileExcerpt
	Task       TaskNode
}

// RenderCodePrompt renders the code generation prompt.
func RenderCodePrompt(req CodeRequest) string {
	return render(codePrompt, req)
}

var fenceLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".rs":   "rust",
	".sh":   "bash",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
}

func fenceLanguage(path string) string {
	if lang, ok := fenceLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "code"
}

// FormatThousands renders n with comma separators, e.g. 60,000.
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// EstimateRow renders one line of the estimate table.
func EstimateRow(name string, e Estimate) string {
	status := "OK"
	if !e.Fits {
		status = "OVER"
	}
	return fmt.Sprintf("[%-4s] %5.1f%% | %-6s | %s", status, e.Utilization, e.Complexity, truncate(name, 50))
}

// EstimateHeader is the header line of the estimate table.
func EstimateHeader() string {
	return fmt.Sprintf("%-6s %6s | %-6s | Task", "Status", "Util", "Cmplx")
}

// MergeInstructions renders the manual merge steps for a set of branches.
func MergeInstructions(baseBranch string, branches []string) string {
	if baseBranch == "" {
		baseBranch = "main"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "For each worker branch, run:\n```bash\ngit checkout %s\ngit pull origin %s\ngit merge <branch-name>\n# resolve any conflicts\ngit push origin %s\n```\n\nBranches to merge:\n", baseBranch, baseBranch, baseBranch)
	for _, br := range branches {
		fmt.Fprintf(&b, "  git merge %s\n", br)
	}
	b.WriteString("\nAfter merging all branches, run:\n  ralph done-all\n")
	return b.String()
}

// SingleMergeInstructions renders the merge steps for one finished lane.
func SingleMergeInstructions(baseBranch, branch string) string {
	if baseBranch == "" {
		baseBranch = "main"
	}
	return fmt.Sprintf("```bash\ngit checkout %[1]s\ngit pull origin %[1]s\ngit merge %[2]s\ngit push origin %[1]s\ngit branch -d %[2]s\n```\n", baseBranch, branch)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
