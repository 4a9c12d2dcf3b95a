package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

type memoryRepo struct {
	products map[int64]Product
	usage    map[int64]int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product), usage: make(map[int64]int64)}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) GetByName(ctx context.Context, name string) (Product, error) {
	for _, p := range r.products {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) UsageCount(ctx context.Context, id int64) (int64, error) {
	return r.usage[id], nil
}

func TestCreateNormalizesName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Product{Name: "  remazol   black B ", Unit: "KG"})
	require.NoError(t, err)
	require.Equal(t, "REMAZOL BLACK B", created.Name)

	found, err := svc.GetByName(context.Background(), "remazol black b")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Product{Name: "   "})
	require.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestDeleteRejectedWhileReferenced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Product{Name: "SODA ASH"})
	require.NoError(t, err)

	repo.usage[created.ID] = 3
	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrInUse)

	repo.usage[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
