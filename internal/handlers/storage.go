package handlers

import (
	"context"
	"ttconnect/db"
)

type StorageInterface interface {
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id string) (*db.User, error)
	RegisterBrandUser(ctx context.Context, u *db.User, b *db.Brand) error
	RegisterSupplierUser(ctx context.Context, u *db.User, sup *db.Supplier) error

	GetBrand(ctx context.Context, id string) (*db.Brand, error)
	GetBrands(ctx context.Context) ([]db.Brand, error)

	GetSupplier(ctx context.Context, id string) (*db.Supplier, error)
	GetSuppliers(ctx context.Context) ([]db.Supplier, error)
	GetSuppliersByIDs(ctx context.Context, ids []string) ([]db.Supplier, error)
	UpdateSupplierOptedInBrands(ctx context.Context, supplierID string, brandIDs []string) error
	UpdateSupplierCertifications(ctx context.Context, supplierID string, certifications []string) error

	CreateConnectionRequest(ctx context.Context, cr *db.ConnectionRequest) error
	GetConnectionRequestByPair(ctx context.Context, brandID, supplierID string) (*db.ConnectionRequest, error)
	GetConnectionRequestForSupplier(ctx context.Context, id, supplierID string) (*db.ConnectionRequest, error)
	GetConnectionRequestsForBrand(ctx context.Context, brandID string) ([]db.BrandConnectionRequest, error)
	GetConnectionRequestsForSupplier(ctx context.Context, supplierID string) ([]db.SupplierConnectionRequest, error)
	RespondToConnectionRequest(ctx context.Context, id, status string) (*db.Workspace, error)

	GetWorkspace(ctx context.Context, id string) (*db.Workspace, error)
	GetWorkspacesForBrand(ctx context.Context, brandID string) ([]db.Workspace, error)
	GetWorkspaceByPair(ctx context.Context, brandID, supplierID string) (*db.Workspace, error)

	CreateMessage(ctx context.Context, m *db.Message) error
	GetWorkspaceMessages(ctx context.Context, workspaceID string) ([]db.WorkspaceMessage, error)

	CreateCertification(ctx context.Context, c *db.Certification) error
	GetSupplierCertifications(ctx context.Context, supplierID string) ([]db.Certification, error)

	CreateSupplyChainRoute(ctx context.Context, route *db.SupplyChainRoute) error
	GetSupplyChainRoute(ctx context.Context, id, brandID string) (*db.SupplyChainRoute, error)
	GetSupplyChainRoutesForBrand(ctx context.Context, brandID string) ([]db.SupplyChainRoute, error)

	CreateOptimizationResult(ctx context.Context, o *db.OptimizationResult) error
}
