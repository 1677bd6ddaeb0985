package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StoreUseCase casos de uso para tiendas.
type StoreUseCase struct {
	repo repository.StoreAdminRepository
	now  func() time.Time
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreAdminRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create registra una tienda.
func (uc *StoreUseCase) Create(ctx context.Context, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidArgument("name es requerido")
	}
	now := uc.now()
	store := &entity.Store{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// GetByID obtiene una tienda; domain.ErrNotFound si no existe.
func (uc *StoreUseCase) GetByID(ctx context.Context, id string) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return toStoreResponse(store), nil
}

// Update actualiza una tienda.
func (uc *StoreUseCase) Update(ctx context.Context, id string, in dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.InvalidArgument("name no puede quedar vacío")
		}
		store.Name = name
	}
	if in.Address != nil {
		store.Address = strings.TrimSpace(*in.Address)
	}
	store.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// List lista tiendas con paginación.
func (uc *StoreUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.StoreListResponse, error) {
	p, limit := normalizePage(page)
	list, total, err := uc.repo.List(ctx, limit, (p-1)*limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStoreResponse(s))
	}
	return &dto.StoreListResponse{Items: items, Pagination: pageResponse(p, limit, total)}, nil
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
