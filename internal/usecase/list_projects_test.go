package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/testutil"
)

func TestListProjects_Execute(t *testing.T) {
	projects := testutil.NewMockProjectRepository()
	trees := testutil.NewMockTreeRepository()
	projects.Projects["api"] = domain.Project{ID: "api", Name: "API"}
	projects.Projects["web"] = domain.Project{ID: "web", Name: "Web"}
	trees.Trees["web"] = sampleTree()

	out, err := NewListProjects(projects, trees).Execute(context.Background(), ListProjectsInput{})
	require.NoError(t, err)

	require.Len(t, out.Summaries, 2)
	assert.Equal(t, "api", out.Summaries[0].Project.ID)
	assert.Equal(t, 0, out.Summaries[0].Total)
	assert.Equal(t, "web", out.Summaries[1].Project.ID)
	assert.Equal(t, 5, out.Summaries[1].Total)
	assert.Equal(t, 1, out.Summaries[1].Completed)
	assert.InDelta(t, 20.0, out.Summaries[1].ProgressPercent, 0.001)
}
