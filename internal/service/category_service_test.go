package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/dto"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
)

type categoryRepoStub struct {
	items      map[uint]models.ComplaintCategory
	complaints map[uint]int64
	nextID     uint
}

func newCategoryRepoStub(items ...models.ComplaintCategory) *categoryRepoStub {
	stub := &categoryRepoStub{items: map[uint]models.ComplaintCategory{}, complaints: map[uint]int64{}}
	for _, item := range items {
		stub.items[item.ID] = item
		if item.ID >= stub.nextID {
			stub.nextID = item.ID
		}
	}
	return stub
}

func (s *categoryRepoStub) List(ctx context.Context, activeOnly bool) ([]models.ComplaintCategory, error) {
	var out []models.ComplaintCategory
	for _, item := range s.items {
		if activeOnly && !item.IsActive {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (models.ComplaintCategory, error) {
	item, ok := s.items[id]
	if !ok {
		return models.ComplaintCategory{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *categoryRepoStub) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	for id, item := range s.items {
		if item.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.ComplaintCategory) error {
	s.nextID++
	category.ID = s.nextID
	s.items[category.ID] = *category
	return nil
}

func (s *categoryRepoStub) Save(ctx context.Context, category *models.ComplaintCategory) error {
	s.items[category.ID] = *category
	return nil
}

func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *categoryRepoStub) CountComplaints(ctx context.Context, id uint) (int64, error) {
	return s.complaints[id], nil
}

func (s *categoryRepoStub) InsertMissing(ctx context.Context, items []models.ComplaintCategory) (int64, error) {
	var inserted int64
	for _, item := range items {
		taken, _ := s.NameTaken(ctx, item.Name, 0)
		if taken {
			continue
		}
		item := item
		_ = s.Create(ctx, &item)
		inserted++
	}
	return inserted, nil
}

var (
	adminActor   = policy.Actor{ID: 1, Role: models.RoleAdmin}
	staffActor   = policy.Actor{ID: 2, Role: models.RoleStaff}
	studentActor = policy.Actor{ID: 3, Role: models.RoleStudent}
)

func TestCategoryServiceCreateRequiresAdmin(t *testing.T) {
	activity := &memoryActivityRepo{}
	svc := NewCategoryService(newCategoryRepoStub(), validatorForTests(), NewActivityService(activity, testLogger()), nil, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, staffActor, dto.CategoryCreateRequest{Name: "Parking"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.EqualError(t, err, "You do not have permission to create categories")

	_, err = svc.Create(ctx, policy.Actor{}, dto.CategoryCreateRequest{Name: "Parking"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	created, err := svc.Create(ctx, adminActor, dto.CategoryCreateRequest{Name: "  Parking  ", Description: ptrString("Car parks")})
	require.NoError(t, err)
	require.Equal(t, "Parking", created.Name)
	require.True(t, created.IsActive, "categories are active unless stated otherwise")
	require.Len(t, activity.entries, 1)
	require.Equal(t, "category.created", activity.entries[0].Action)
}

func TestCategoryServiceRejectsDuplicateNames(t *testing.T) {
	repo := newCategoryRepoStub(
		models.ComplaintCategory{ID: 1, Name: "Academic Issues", IsActive: true},
		models.ComplaintCategory{ID: 2, Name: "IT Services", IsActive: true},
	)
	svc := NewCategoryService(repo, validatorForTests(), nil, nil, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, dto.CategoryCreateRequest{Name: "IT Services"})
	require.Equal(t, []string{"The name has already been taken."}, validationFields(t, err)["name"])

	_, err = svc.Update(ctx, adminActor, 1, dto.CategoryUpdateRequest{Name: ptrString("IT Services")})
	require.Contains(t, validationFields(t, err), "name")

	updated, err := svc.Update(ctx, adminActor, 1, dto.CategoryUpdateRequest{Name: ptrString("Academic Issues"), IsActive: ptrBool(false)})
	require.NoError(t, err, "keeping the same name is not a duplicate")
	require.False(t, updated.IsActive)

	_, err = svc.Create(ctx, adminActor, dto.CategoryCreateRequest{})
	require.Contains(t, validationFields(t, err), "name")
}

func TestCategoryServiceDeleteGuardsReferencedCategories(t *testing.T) {
	repo := newCategoryRepoStub(models.ComplaintCategory{ID: 1, Name: "Academic Issues", IsActive: true})
	repo.complaints[1] = 2
	svc := NewCategoryService(repo, validatorForTests(), nil, nil, testLogger())
	ctx := context.Background()

	err := svc.Delete(ctx, adminActor, 1)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.EqualError(t, err, "Cannot delete category with associated complaints. Deactivate it instead.")
	_, err = svc.Get(ctx, 1)
	require.NoError(t, err, "the category survives and stays active")

	repo.complaints[1] = 0
	require.NoError(t, svc.Delete(ctx, adminActor, 1))
	_, err = svc.Get(ctx, 1)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, adminActor, 99), apperrors.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, studentActor, 99), apperrors.ErrForbidden)
}

func TestCategoryServiceListActiveOnly(t *testing.T) {
	repo := newCategoryRepoStub(
		models.ComplaintCategory{ID: 1, Name: "Academic Issues", IsActive: true},
		models.ComplaintCategory{ID: 2, Name: "Retired", IsActive: false},
	)
	svc := NewCategoryService(repo, validatorForTests(), nil, nil, testLogger())

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestCategoryServiceStoresInactiveCategories(t *testing.T) {
	db := setupServiceDB(t)
	c := seedCampus(t, db)
	svc := NewCategoryService(repository.NewCategoryRepository(db), validatorForTests(), nil, nil, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, c.actor(c.admin), dto.CategoryCreateRequest{Name: "Dormant", IsActive: ptrBool(false)})
	require.NoError(t, err)
	require.False(t, created.IsActive)

	reloaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	for _, category := range active {
		require.NotEqual(t, "Dormant", category.Name)
	}

	defaulted, err := svc.Create(ctx, c.actor(c.admin), dto.CategoryCreateRequest{Name: "Parking"})
	require.NoError(t, err)
	require.True(t, defaulted.IsActive)
}

func TestCategoryServiceChangesRefreshDashboard(t *testing.T) {
	counter := &invalidationCounter{}
	svc := NewCategoryService(newCategoryRepoStub(), validatorForTests(), nil, counter, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, dto.CategoryCreateRequest{Name: "Parking"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, adminActor, created.ID, dto.CategoryUpdateRequest{Name: ptrString("Parking & Transport")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, adminActor, created.ID))
	require.Equal(t, 3, counter.calls)

	_, err = svc.Create(ctx, staffActor, dto.CategoryCreateRequest{Name: "Hidden"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.Equal(t, 3, counter.calls)
}
