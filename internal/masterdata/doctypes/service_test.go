package doctypes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type memoryDocTypeRepo struct {
	records   map[int64]DocType
	nextID    int64
	deletions int
}

func newMemoryDocTypeRepo() *memoryDocTypeRepo {
	return &memoryDocTypeRepo{records: make(map[int64]DocType)}
}

func (r *memoryDocTypeRepo) seed(d DocType) DocType {
	r.nextID++
	d.ID = r.nextID
	r.records[d.ID] = d
	return d
}

func (r *memoryDocTypeRepo) All(ctx context.Context) ([]DocType, error) {
	out := make([]DocType, 0, len(r.records))
	for _, d := range r.records {
		out = append(out, d)
	}
	return out, nil
}

func (r *memoryDocTypeRepo) Get(ctx context.Context, id int64) (DocType, error) {
	d, ok := r.records[id]
	if !ok {
		return DocType{}, shared.ErrNotFound
	}
	return d, nil
}

func (r *memoryDocTypeRepo) GetByIDs(ctx context.Context, ids []int64) ([]DocType, error) {
	out := make([]DocType, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.records[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDocTypeRepo) Create(ctx context.Context, d DocType) (DocType, error) {
	return r.seed(d), nil
}

func (r *memoryDocTypeRepo) Update(ctx context.Context, id int64, d DocType) error {
	current, ok := r.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.ID = id
	d.Kind = current.Kind
	r.records[id] = d
	return nil
}

func (r *memoryDocTypeRepo) DeleteMany(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if d, ok := r.records[id]; ok && !d.Protected() {
			delete(r.records, id)
			r.deletions++
		}
	}
	return nil
}

func TestCreateForcesUserKind(t *testing.T) {
	repo := newMemoryDocTypeRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), 1, DocType{
		Code: "adjustment", Title: "Adjustment", Kind: KindSystem, IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, KindUser, created.Kind)
}

func TestUpdateRejectsSystemType(t *testing.T) {
	repo := newMemoryDocTypeRepo()
	opening := repo.seed(DocType{Code: "opening", Title: "Opening", Kind: KindSystem, IsActive: true})
	svc := NewService(repo, nil, nil)

	err := svc.Update(context.Background(), 1, opening.ID, DocType{Code: "opening", Title: "Renamed"})
	require.ErrorIs(t, err, shared.ErrSystemProtected)

	current, err := svc.Get(context.Background(), opening.ID)
	require.NoError(t, err)
	require.Equal(t, "Opening", current.Title)
}

func TestDeleteManyRejectsWholeBatch(t *testing.T) {
	repo := newMemoryDocTypeRepo()
	opening := repo.seed(DocType{Code: "opening", Title: "Opening", Kind: KindSystem, IsActive: true})
	closing := repo.seed(DocType{Code: "closing", Title: "Closing", Kind: KindSystem, IsActive: true})
	adhoc := repo.seed(DocType{Code: "adhoc", Title: "Ad hoc", Kind: KindUser, IsActive: true})
	svc := NewService(repo, nil, nil)

	err := svc.DeleteMany(context.Background(), 1, []int64{adhoc.ID, opening.ID, closing.ID})
	require.ErrorIs(t, err, shared.ErrSystemProtected)
	require.Zero(t, repo.deletions)

	_, err = svc.Get(context.Background(), adhoc.ID)
	require.NoError(t, err, "the user type survives the rejected batch")

	err = svc.DeleteMany(context.Background(), 1, []int64{adhoc.ID})
	require.NoError(t, err)
	require.Equal(t, 1, repo.deletions)
}

func TestDeleteManyEmptyBatch(t *testing.T) {
	repo := newMemoryDocTypeRepo()
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.DeleteMany(context.Background(), 1, nil))
}

func TestValidationRequiresCodeAndTitle(t *testing.T) {
	repo := newMemoryDocTypeRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), 1, DocType{Code: "  ", Title: "Payment"})
	require.ErrorIs(t, err, shared.ErrRequiredField)

	_, err = svc.Create(context.Background(), 1, DocType{Code: "payment", Title: ""})
	require.ErrorIs(t, err, shared.ErrRequiredField)
}
