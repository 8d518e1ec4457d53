package services

import (
	"context"
	"errors"
	"testing"

	"assetadmin/internal/models"
	"assetadmin/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCascadeLeafEntity(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	filter := bson.M{"_id": primitive.NewObjectID()}

	store.On("DeleteMany", ctx, "states", filter).Return(int64(1), nil).Once()

	counts, err := svc.Delete(ctx, models.StateEntity, filter)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"state": 1}, counts)
	assert.False(t, svc.HasDependents(models.StateEntity))
	store.AssertNotCalled(t, "FindIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestCascadeNoParents(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	filter := bson.M{"_id": primitive.NewObjectID()}

	store.On("FindIDs", ctx, "wallets", filter).Return([]primitive.ObjectID{}, nil).Once()

	counts, err := svc.Delete(ctx, models.WalletEntity, filter)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"wallet": 0}, counts)
	store.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestCascadeWalletDelete(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id}
	ids := []primitive.ObjectID{id}

	store.On("FindIDs", ctx, "wallets", filter).Return(ids, nil).Once()
	store.On("DeleteMany", ctx, "wallettransactions", bson.M{"$or": bson.A{
		bson.M{"fromwalletId": bson.M{"$in": ids}},
		bson.M{"towalletId": bson.M{"$in": ids}},
	}}).Return(int64(4), nil).Once()
	store.On("DeleteMany", ctx, "wallets", filter).Return(int64(1), nil).Once()

	counts, err := svc.Delete(ctx, models.WalletEntity, filter)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"wallet": 1, "walletTransaction": 4}, counts)
	store.AssertExpectations(t)
}

func TestCascadeSelfReferenceAddsRootCount(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id}
	ids := []primitive.ObjectID{id}

	store.On("FindIDs", ctx, "assetcategories", filter).Return(ids, nil).Once()
	store.On("Count", ctx, "assets", mock.Anything).Return(int64(2), nil).Once()
	store.On("Count", ctx, "assetcategories", bson.M{"$or": bson.A{
		bson.M{"parentCategoryId": bson.M{"$in": ids}},
	}}).Return(int64(3), nil).Once()
	store.On("Count", ctx, "assetcategories", filter).Return(int64(1), nil).Once()

	counts, err := svc.Count(ctx, models.AssetCategoryEntity, filter)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"asset": 2, "assetCategory": 4}, counts)
}

func TestCascadeSoftDeleteAppliesBodyEverywhere(t *testing.T) {
	store := new(mockStore)
	tx := &txRecorder{}
	svc := NewCascadeService(store, tx, logger.NewNop())
	ctx := context.Background()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id}
	set := bson.M{"isDeleted": true, "updatedBy": primitive.NewObjectID()}

	store.On("FindIDs", ctx, "projectroutes", filter).Return([]primitive.ObjectID{id}, nil).Once()
	store.On("UpdateMany", ctx, "routeroles", mock.Anything, set).Return(int64(5), nil).Once()
	store.On("UpdateMany", ctx, "projectroutes", filter, set).Return(int64(1), nil).Once()

	counts, err := svc.SoftDelete(ctx, models.ProjectRouteEntity, filter, set)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"projectRoute": 1, "routeRole": 5}, counts)
	assert.Equal(t, 1, tx.calls)
	store.AssertExpectations(t)
}

func TestCascadeUserFanOut(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id}

	store.On("FindIDs", ctx, "users", filter).Return([]primitive.ObjectID{id}, nil).Once()
	store.On("Count", ctx, mock.Anything, mock.Anything).Return(int64(1), nil)

	counts, err := svc.Count(ctx, models.UserEntity, filter)
	require.NoError(t, err)

	assert.Len(t, counts, len(DependentsOf(models.UserEntity)))
	// one self-reference plus the root itself
	assert.Equal(t, int64(2), counts["user"])
	assert.Equal(t, int64(1), counts["earnings"])
	assert.Equal(t, int64(1), counts["userRole"])
}

func TestCascadeFirstErrorAborts(t *testing.T) {
	store := new(mockStore)
	svc := NewCascadeService(store, nil, logger.NewNop())
	ctx := context.Background()
	id := primitive.NewObjectID()
	filter := bson.M{"_id": id}
	boom := errors.New("boom")

	store.On("FindIDs", ctx, "roles", filter).Return([]primitive.ObjectID{id}, nil).Once()
	store.On("DeleteMany", ctx, "routeroles", mock.Anything).Return(int64(0), boom).Once()

	_, err := svc.Delete(ctx, models.RoleEntity, filter)
	assert.ErrorIs(t, err, boom)
	store.AssertNotCalled(t, "DeleteMany", ctx, "userroles", mock.Anything)
	store.AssertNotCalled(t, "DeleteMany", ctx, "roles", mock.Anything)
}
