package usecase

import (
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/testutil"
)

var testNow = time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

// sampleTree returns:
//
//	Root
//	├── Backend
//	│   ├── API (done)
//	│   └── Auth
//	│       ├── Login (pending)
//	│       └── Logout (in-progress)
//	├── Docs (pending)
//	└── Ops (blocked)
func sampleTree() domain.Tree {
	return domain.Tree{
		Name:    "Root",
		Context: "Root context",
		Children: []domain.TaskNode{
			{
				Name:    "Backend",
				Context: "Go service",
				Children: []domain.TaskNode{
					{Name: "API", Status: domain.StatusDone},
					{
						Name: "Auth",
						Children: []domain.TaskNode{
							{
								Name:       "Login",
								Status:     domain.StatusPending,
								Spec:       "Implement the login handler",
								Files:      []string{"auth/login.go"},
								Acceptance: []string{"go build ./...", "go test ./auth/..."},
							},
							{Name: "Logout", Status: domain.StatusInProgress},
						},
					},
				},
			},
			{Name: "Docs", Status: domain.StatusPending},
			{Name: "Ops", Status: domain.StatusBlocked},
		},
	}
}

// testEnv bundles the mocks most use cases need.
type testEnv struct {
	trees    *testutil.MockTreeRepository
	workers  *testutil.MockWorkerRepository
	projects *testutil.MockProjectRepository
	config   *testutil.MockConfigLoader
	clock    *testutil.MockClock
	logger   *testutil.MockLogger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		trees:    testutil.NewMockTreeRepository(),
		workers:  testutil.NewMockWorkerRepository(),
		projects: testutil.NewMockProjectRepository(),
		config:   testutil.NewMockConfigLoader(),
		clock:    &testutil.MockClock{NowTime: testNow},
		logger:   &testutil.MockLogger{},
	}
	env.trees.Trees["default"] = sampleTree()
	env.projects.Projects["default"] = domain.Project{ID: "default", Name: "Root", Path: "/repo", TargetTokens: 60000}
	env.projects.Requirements["default"] = "# Requirements\nShip it"
	return env
}

func (e *testEnv) tree() domain.Tree {
	return e.trees.Trees["default"]
}

func (e *testEnv) status(path string) domain.Status {
	node, ok := domain.FindByPath(e.tree(), domain.ParsePath(path))
	if !ok {
		return ""
	}
	return node.Status
}
