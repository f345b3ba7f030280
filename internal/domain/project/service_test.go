package project_test

import (
	"context"
	"testing"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
	"github.com/rpggio/dailylog/internal/repository"
	"github.com/rpggio/dailylog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProjectService_TreeDefaultsRelationToRoot(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Tree", ctx, "o1").Return([]logitem.Item{
		{ID: "o1", Title: "Origin", Date: "2024-05-01"},
		{ID: "c1", Title: "Child", Date: "2024-05-02", OriginID: strPtr("o1"), ParentID: strPtr("o1"), RelationType: logitem.RelationInherit},
	}, nil)

	svc := project.NewService(repo, nil, nil)
	items, err := svc.Tree(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, logitem.RelationRoot, items[0].RelationType)
	require.Equal(t, logitem.RelationInherit, items[1].RelationType)
}

func TestProjectService_TreeRequiresOrigin(t *testing.T) {
	svc := project.NewService(&mocks.ProjectRepository{}, nil, nil)
	_, err := svc.Tree(context.Background(), " ")
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_AddMilestone(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	acts := &mocks.ActivityRepository{}
	repo.On("GetItem", ctx, "o1").Return(&logitem.Item{ID: "o1"}, nil)
	repo.On("CreateMilestone", ctx, mock.MatchedBy(func(item *logitem.Item) bool {
		return item.Title == project.DefaultMilestoneTitle &&
			item.RelationType == logitem.RelationEvolve &&
			*item.OriginID == "o1" && *item.ParentID == "o1" &&
			item.Date == "2024-05-03" && item.ID != ""
	})).Return(nil)
	acts.On("Log", ctx, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Type == activity.TypeMilestoneCreated
	})).Return(nil)

	svc := project.NewService(repo, acts, nil)
	item, err := svc.AddMilestone(ctx, project.MilestoneRequest{OriginID: "o1", Date: "2024-05-03"})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	repo.AssertExpectations(t)
	acts.AssertExpectations(t)
}

func TestProjectService_AddMilestoneUnknownOrigin(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("GetItem", ctx, "missing").Return(nil, repository.ErrNotFound)

	svc := project.NewService(repo, nil, nil)
	_, err := svc.AddMilestone(ctx, project.MilestoneRequest{OriginID: "missing", Date: "2024-05-03"})
	require.ErrorIs(t, err, project.ErrItemNotFound)
}

func TestProjectService_UpdateRelationValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil, nil)

	err := svc.UpdateRelation(ctx, project.RelationRequest{ItemID: "a", RelationType: logitem.RelationRoot})
	require.ErrorIs(t, err, project.ErrInvalidRelation)

	err = svc.UpdateRelation(ctx, project.RelationRequest{ItemID: "a", TargetParentID: strPtr("a"), RelationType: logitem.RelationInherit})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	repo.On("GetItem", ctx, "ghost").Return(nil, repository.ErrNotFound)
	err = svc.UpdateRelation(ctx, project.RelationRequest{ItemID: "ghost", RelationType: logitem.RelationInherit})
	require.ErrorIs(t, err, project.ErrItemNotFound)
}

func TestProjectService_UpdateRelation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	target := strPtr("m1")
	repo.On("GetItem", ctx, "c1").Return(&logitem.Item{ID: "c1"}, nil)
	repo.On("GetItem", ctx, "m1").Return(&logitem.Item{ID: "m1"}, nil)
	repo.On("UpdateRelation", ctx, "c1", target, logitem.RelationInherit).Return(nil)

	svc := project.NewService(repo, nil, nil)
	require.NoError(t, svc.UpdateRelation(ctx, project.RelationRequest{ItemID: "c1", TargetParentID: target, RelationType: logitem.RelationInherit}))
	repo.AssertExpectations(t)
}

func TestProjectService_DeleteRefusesParents(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("GetItem", ctx, "m1").Return(&logitem.Item{ID: "m1"}, nil)
	repo.On("CountChildren", ctx, "m1").Return(2, nil)

	svc := project.NewService(repo, nil, nil)
	err := svc.DeleteItem(ctx, "m1")
	require.ErrorIs(t, err, project.ErrHasChildren)
	repo.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("GetItem", ctx, "m1").Return(&logitem.Item{ID: "m1"}, nil)
	repo.On("CountChildren", ctx, "m1").Return(0, nil)
	repo.On("DeleteItem", ctx, "m1").Return(nil)

	svc := project.NewService(repo, nil, nil)
	require.NoError(t, svc.DeleteItem(ctx, "m1"))
	repo.AssertExpectations(t)
}
