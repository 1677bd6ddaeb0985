package dto

import "time"

// CreateProductRequest entrada para registrar un producto.
type CreateProductRequest struct {
	SKU         string `json:"sku" validate:"required,min=1,max=100"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	CategoryID  string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	SafetyStock int64  `json:"safetyStock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (el SKU no cambia).
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,uuid"`
	SafetyStock *int64  `json:"safetyStock" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"categoryId,omitempty"`
	SafetyStock int64     `json:"safetyStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Pagination PageResponse      `json:"pagination"`
}

// CreateStoreRequest entrada para registrar una tienda.
type CreateStoreRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"max=300"`
}

// UpdateStoreRequest entrada para actualizar una tienda.
type UpdateStoreRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

// StoreResponse salida de una tienda.
type StoreResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoreListResponse lista paginada de tiendas.
type StoreListResponse struct {
	Items      []StoreResponse `json:"items"`
	Pagination PageResponse    `json:"pagination"`
}

// CreateCategoryRequest entrada para registrar una categoría.
type CreateCategoryRequest struct {
	Code      string `json:"code" validate:"required,min=1,max=10"`
	Name      string `json:"name" validate:"required,min=1,max=50"`
	SortOrder int    `json:"sortOrder" validate:"min=0"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryListResponse categorías ordenadas por sortOrder.
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
}
