package details

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type memoryDetailRepo struct {
	types     map[int64]DetailType
	instances map[int64]DetailInstance
	nextID    int64
	deletions int
}

func newMemoryDetailRepo() *memoryDetailRepo {
	return &memoryDetailRepo{
		types:     make(map[int64]DetailType),
		instances: make(map[int64]DetailInstance),
	}
}

func (r *memoryDetailRepo) seedType(t DetailType) DetailType {
	r.nextID++
	t.ID = r.nextID
	r.types[t.ID] = t
	return t
}

func (r *memoryDetailRepo) seedInstance(inst DetailInstance) DetailInstance {
	r.nextID++
	inst.ID = r.nextID
	r.instances[inst.ID] = inst
	return inst
}

func (r *memoryDetailRepo) AllTypes(ctx context.Context) ([]DetailType, error) {
	out := make([]DetailType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryDetailRepo) GetType(ctx context.Context, id int64) (DetailType, error) {
	t, ok := r.types[id]
	if !ok {
		return DetailType{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *memoryDetailRepo) GetTypesByIDs(ctx context.Context, ids []int64) ([]DetailType, error) {
	out := make([]DetailType, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.types[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryDetailRepo) CreateType(ctx context.Context, t DetailType) (DetailType, error) {
	return r.seedType(t), nil
}

func (r *memoryDetailRepo) UpdateType(ctx context.Context, id int64, t DetailType) error {
	current, ok := r.types[id]
	if !ok || current.Protected() {
		return shared.ErrNotFound
	}
	t.ID = id
	t.Kind = current.Kind
	r.types[id] = t
	return nil
}

func (r *memoryDetailRepo) DeleteTypes(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if t, ok := r.types[id]; ok && !t.Protected() {
			delete(r.types, id)
			r.deletions++
		}
	}
	return nil
}

func (r *memoryDetailRepo) ListInstances(ctx context.Context, typeID int64) ([]DetailInstance, error) {
	out := make([]DetailInstance, 0)
	for _, inst := range r.instances {
		if inst.TypeID == typeID {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memoryDetailRepo) GetInstance(ctx context.Context, id int64) (DetailInstance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return DetailInstance{}, shared.ErrNotFound
	}
	return inst, nil
}

func (r *memoryDetailRepo) CreateInstance(ctx context.Context, inst DetailInstance) (DetailInstance, error) {
	return r.seedInstance(inst), nil
}

func (r *memoryDetailRepo) UpdateInstance(ctx context.Context, id int64, inst DetailInstance) error {
	current, ok := r.instances[id]
	if !ok {
		return shared.ErrNotFound
	}
	inst.ID = id
	inst.DetailCode = current.DetailCode
	r.instances[id] = inst
	return nil
}

func (r *memoryDetailRepo) DeleteInstance(ctx context.Context, id int64) error {
	if _, ok := r.instances[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.instances, id)
	return nil
}

func (r *memoryDetailRepo) AssignCode(ctx context.Context, id int64, code string) (DetailInstance, error) {
	inst, ok := r.instances[id]
	if !ok || inst.DetailCode != nil {
		return DetailInstance{}, ErrAlreadyAssigned
	}
	inst.DetailCode = &code
	r.instances[id] = inst
	return inst, nil
}

func TestAssignCodeTransitionsOnce(t *testing.T) {
	repo := newMemoryDetailRepo()
	typ := repo.seedType(DetailType{Code: "project", Title: "Project", Kind: KindUser, IsActive: true})
	inst := repo.seedInstance(DetailInstance{TypeID: typ.ID, EntityCode: "P-100", Title: "Harbor works", IsActive: true})
	svc := NewService(repo, nil, nil)

	require.False(t, inst.Assigned())
	require.False(t, inst.CanReference())

	assigned, err := svc.AssignCode(context.Background(), 1, inst.ID, "  4001  ")
	require.NoError(t, err)
	require.True(t, assigned.Assigned())
	require.True(t, assigned.CanReference())
	require.Equal(t, "4001", *assigned.DetailCode)

	_, err = svc.AssignCode(context.Background(), 1, inst.ID, "4002")
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	// The first code survives the rejected second attempt.
	current, err := svc.GetInstance(context.Background(), inst.ID)
	require.NoError(t, err)
	require.Equal(t, "4001", *current.DetailCode)
}

func TestAssignCodeRejectsBlank(t *testing.T) {
	repo := newMemoryDetailRepo()
	typ := repo.seedType(DetailType{Code: "project", Title: "Project", Kind: KindUser, IsActive: true})
	inst := repo.seedInstance(DetailInstance{TypeID: typ.ID, EntityCode: "P-100", Title: "Harbor works", IsActive: true})
	svc := NewService(repo, nil, nil)

	for _, code := range []string{"", "   ", "\t"} {
		_, err := svc.AssignCode(context.Background(), 1, inst.ID, code)
		require.ErrorIs(t, err, ErrEmptyCode)
	}

	current, err := svc.GetInstance(context.Background(), inst.ID)
	require.NoError(t, err)
	require.False(t, current.Assigned())
}

func TestAssignCodeUnknownInstance(t *testing.T) {
	repo := newMemoryDetailRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.AssignCode(context.Background(), 1, 42, "4001")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateInstanceWithImmediateCode(t *testing.T) {
	repo := newMemoryDetailRepo()
	typ := repo.seedType(DetailType{Code: "costcenter", Title: "Cost center", Kind: KindUser, IsActive: true})
	svc := NewService(repo, nil, nil)

	code := "5001"
	created, err := svc.CreateInstance(context.Background(), 1, DetailInstance{
		TypeID: typ.ID, EntityCode: "CC-1", Title: "Assembly line", DetailCode: &code, IsActive: true,
	})
	require.NoError(t, err)
	require.True(t, created.Assigned())

	// A blank code at creation time means unassigned, not assigned-to-empty.
	blank := "   "
	created, err = svc.CreateInstance(context.Background(), 1, DetailInstance{
		TypeID: typ.ID, EntityCode: "CC-2", Title: "Paint shop", DetailCode: &blank, IsActive: true,
	})
	require.NoError(t, err)
	require.Nil(t, created.DetailCode)
	require.False(t, created.Assigned())
}

func TestCreateTypeAlwaysUserKind(t *testing.T) {
	repo := newMemoryDetailRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.CreateType(context.Background(), 1, DetailType{
		Code: "region", Title: "Region", Kind: KindSystem, IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, KindUser, created.Kind)
	require.False(t, created.Protected())
}

func TestDeleteTypesRejectsWholeBatchOnSystemType(t *testing.T) {
	repo := newMemoryDetailRepo()
	system := repo.seedType(DetailType{Code: "party", Title: "Party", Kind: KindSystem, IsActive: true})
	user := repo.seedType(DetailType{Code: "project", Title: "Project", Kind: KindUser, IsActive: true})
	svc := NewService(repo, nil, nil)

	err := svc.DeleteTypes(context.Background(), 1, []int64{user.ID, system.ID})
	require.ErrorIs(t, err, shared.ErrSystemProtected)
	require.Zero(t, repo.deletions, "nothing is deleted when the batch is rejected")

	_, err = svc.GetType(context.Background(), user.ID)
	require.NoError(t, err, "the user type survives the rejected batch")

	err = svc.DeleteTypes(context.Background(), 1, []int64{user.ID})
	require.NoError(t, err)
	require.Equal(t, 1, repo.deletions)
}

func TestUpdateTypeProtectsSystemTypes(t *testing.T) {
	repo := newMemoryDetailRepo()
	system := repo.seedType(DetailType{Code: "party", Title: "Party", Kind: KindSystem, IsActive: true})
	svc := NewService(repo, nil, nil)

	err := svc.UpdateType(context.Background(), 1, system.ID, DetailType{Code: "party", Title: "Renamed"})
	require.ErrorIs(t, err, shared.ErrSystemProtected)
}
