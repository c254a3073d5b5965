package service

import (
	"context"
	"fmt"

	"shop-api/internal/database"
	"shop-api/internal/repository"
)

// ClearResult reports how many rows ClearAll removed
type ClearResult struct {
	Products int64 `json:"products"`
	Users    int64 `json:"users"`
}

// AdminService groups operations that span both stores
type AdminService interface {
	ClearAll(ctx context.Context) (*ClearResult, error)
}

type adminService struct {
	ex database.Executor
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(ex database.Executor) AdminService {
	return &adminService{ex: ex}
}

// ClearAll deletes every product and every account in one transaction
func (s *adminService) ClearAll(ctx context.Context) (*ClearResult, error) {
	result := &ClearResult{}

	err := s.ex.WithTx(ctx, func(ctx context.Context, tx database.Executor) error {
		products, err := repository.NewProductRepository(tx).DeleteAll(ctx)
		if err != nil {
			return err
		}
		users, err := repository.NewUserRepository(tx).DeleteAll(ctx)
		if err != nil {
			return err
		}

		result.Products, result.Users = products, users
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear data: %w", err)
	}

	return result, nil
}
