package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// ErrAlreadyProcessed is returned when a connection request is responded to
// after it already left the pending state.
var ErrAlreadyProcessed = errors.New("connection request already processed")

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// User

type User struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             string    `db:"role" json:"role"`
	LinkedBrandID    *string   `db:"linked_brand_id" json:"linkedBrandId,omitempty"`
	LinkedSupplierID *string   `db:"linked_supplier_id" json:"linkedSupplierId,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE email=$1`
	err := s.db.GetContext(ctx, u, query, email)
	return u, err
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE id=$1`
	err := s.db.GetContext(ctx, u, query, id)
	return u, err
}

// Brand

type Brand struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Logo      string    `db:"logo" json:"logo"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

func (s *Storage) GetBrand(ctx context.Context, id string) (*Brand, error) {
	b := &Brand{}
	query := `SELECT * FROM brands WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	return b, err
}

func (s *Storage) GetBrands(ctx context.Context) ([]Brand, error) {
	brands := []Brand{}
	query := `SELECT * FROM brands ORDER BY name ASC`
	err := s.db.SelectContext(ctx, &brands, query)
	return brands, err
}

// Supplier

type Supplier struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Address         string         `db:"address" json:"address"`
	Contact         types.JSONText `db:"contact" json:"contact"`
	Certifications  pq.StringArray `db:"certifications" json:"certifications"`
	Materials       pq.StringArray `db:"materials" json:"materials"`
	ValueProcesses  pq.StringArray `db:"value_processes" json:"value_processes"`
	Facilities      types.JSONText `db:"facilities" json:"facilities"`
	RiskScore       int            `db:"risk_score" json:"risk_score"`
	ProfileStrength int            `db:"profile_strength" json:"profile_strength"`
	OptedInBrands   pq.StringArray `db:"opted_in_brands" json:"opted_in_brands"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"-"`
}

func (s *Storage) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	sup := &Supplier{}
	query := `SELECT * FROM suppliers WHERE id=$1`
	err := s.db.GetContext(ctx, sup, query, id)
	return sup, err
}

func (s *Storage) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	suppliers := []Supplier{}
	query := `SELECT * FROM suppliers ORDER BY name ASC`
	err := s.db.SelectContext(ctx, &suppliers, query)
	return suppliers, err
}

func (s *Storage) GetSuppliersByIDs(ctx context.Context, ids []string) ([]Supplier, error) {
	suppliers := []Supplier{}
	if len(ids) == 0 {
		return suppliers, nil
	}
	query := `SELECT * FROM suppliers WHERE id = ANY($1)`
	err := s.db.SelectContext(ctx, &suppliers, query, pq.Array(ids))
	return suppliers, err
}

func (s *Storage) UpdateSupplierOptedInBrands(ctx context.Context, supplierID string, brandIDs []string) error {
	query := `
        UPDATE suppliers
        SET opted_in_brands = $1, updated_at = NOW()
        WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, pq.Array(brandIDs), supplierID)
	return err
}

func (s *Storage) UpdateSupplierCertifications(ctx context.Context, supplierID string, certifications []string) error {
	query := `
        UPDATE suppliers
        SET certifications = $1, updated_at = NOW()
        WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, pq.Array(certifications), supplierID)
	return err
}

// Registration creates the business entity and the user acting as it in one
// transaction, so a user row never points at a missing entity.

func (s *Storage) RegisterBrandUser(ctx context.Context, u *User, b *Brand) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b.ID = uuid.NewString()
	brandQuery := `
        INSERT INTO brands (id, name, logo)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, brandQuery, b.ID, b.Name, b.Logo).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}

	u.ID = uuid.NewString()
	u.Role = "brand"
	u.LinkedBrandID = &b.ID
	userQuery := `
        INSERT INTO users (id, email, password_hash, role, linked_brand_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, userQuery, u.ID, u.Email, u.PasswordHash, u.Role, u.LinkedBrandID).
		Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Storage) RegisterSupplierUser(ctx context.Context, u *User, sup *Supplier) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sup.ID = uuid.NewString()
	supQuery := `
        INSERT INTO suppliers
            (id, name, address, contact, certifications, materials, value_processes,
             facilities, risk_score, profile_strength, opted_in_brands)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, supQuery,
		sup.ID, sup.Name, sup.Address, sup.Contact,
		sup.Certifications, sup.Materials, sup.ValueProcesses, sup.Facilities,
		sup.RiskScore, sup.ProfileStrength, sup.OptedInBrands).
		Scan(&sup.CreatedAt, &sup.UpdatedAt); err != nil {
		return err
	}

	u.ID = uuid.NewString()
	u.Role = "supplier"
	u.LinkedSupplierID = &sup.ID
	userQuery := `
        INSERT INTO users (id, email, password_hash, role, linked_supplier_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, userQuery, u.ID, u.Email, u.PasswordHash, u.Role, u.LinkedSupplierID).
		Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// ConnectionRequest

type ConnectionRequest struct {
	ID             string    `db:"id" json:"id"`
	BrandID        string    `db:"brand_id" json:"brand_id"`
	SupplierID     string    `db:"supplier_id" json:"supplier_id"`
	Status         string    `db:"status" json:"status"`
	InitialMessage string    `db:"initial_message" json:"initial_message"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// BrandConnectionRequest is a request as seen by the brand that sent it,
// joined with a summary of the target supplier.
type BrandConnectionRequest struct {
	ConnectionRequest
	SupplierName            string `db:"supplier_name" json:"supplier_name"`
	SupplierProfileStrength int    `db:"supplier_profile_strength" json:"supplier_profile_strength"`
	SupplierRiskScore       int    `db:"supplier_risk_score" json:"supplier_risk_score"`
}

// SupplierConnectionRequest is a request as seen by the supplier it targets,
// joined with a summary of the requesting brand.
type SupplierConnectionRequest struct {
	ConnectionRequest
	BrandName string `db:"brand_name" json:"brand_name"`
	BrandLogo string `db:"brand_logo" json:"brand_logo"`
}

func (s *Storage) CreateConnectionRequest(ctx context.Context, cr *ConnectionRequest) error {
	cr.ID = uuid.NewString()
	cr.Status = "pending"
	query := `
        INSERT INTO connection_requests (id, brand_id, supplier_id, status, initial_message)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		cr.ID, cr.BrandID, cr.SupplierID, cr.Status, cr.InitialMessage).
		Scan(&cr.CreatedAt, &cr.UpdatedAt)
}

func (s *Storage) GetConnectionRequestByPair(ctx context.Context, brandID, supplierID string) (*ConnectionRequest, error) {
	cr := &ConnectionRequest{}
	query := `SELECT * FROM connection_requests WHERE brand_id=$1 AND supplier_id=$2`
	err := s.db.GetContext(ctx, cr, query, brandID, supplierID)
	return cr, err
}

func (s *Storage) GetConnectionRequestForSupplier(ctx context.Context, id, supplierID string) (*ConnectionRequest, error) {
	cr := &ConnectionRequest{}
	query := `SELECT * FROM connection_requests WHERE id=$1 AND supplier_id=$2`
	err := s.db.GetContext(ctx, cr, query, id, supplierID)
	return cr, err
}

func (s *Storage) GetConnectionRequestsForBrand(ctx context.Context, brandID string) ([]BrandConnectionRequest, error) {
	requests := []BrandConnectionRequest{}
	query := `
        SELECT cr.*,
               sup.name AS supplier_name,
               sup.profile_strength AS supplier_profile_strength,
               sup.risk_score AS supplier_risk_score
        FROM connection_requests cr
        JOIN suppliers sup ON cr.supplier_id = sup.id
        WHERE cr.brand_id = $1
        ORDER BY cr.created_at DESC`
	err := s.db.SelectContext(ctx, &requests, query, brandID)
	return requests, err
}

func (s *Storage) GetConnectionRequestsForSupplier(ctx context.Context, supplierID string) ([]SupplierConnectionRequest, error) {
	requests := []SupplierConnectionRequest{}
	query := `
        SELECT cr.*,
               b.name AS brand_name,
               b.logo AS brand_logo
        FROM connection_requests cr
        JOIN brands b ON cr.brand_id = b.id
        WHERE cr.supplier_id = $1
        ORDER BY cr.created_at DESC`
	err := s.db.SelectContext(ctx, &requests, query, supplierID)
	return requests, err
}

// RespondToConnectionRequest finalizes a pending request. The status update is
// a compare-and-swap on status='pending', so two concurrent responses cannot
// both land, and the workspace for an accepted request is created in the same
// transaction. Returns the new workspace when the request was accepted.
func (s *Storage) RespondToConnectionRequest(ctx context.Context, id, status string) (*Workspace, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE connection_requests
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = 'pending'`, status, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyProcessed
	}

	var ws *Workspace
	if status == "accepted" {
		cr := &ConnectionRequest{}
		if err := tx.GetContext(ctx, cr, `SELECT * FROM connection_requests WHERE id=$1`, id); err != nil {
			return nil, err
		}
		ws = &Workspace{
			ID:         uuid.NewString(),
			BrandID:    cr.BrandID,
			SupplierID: cr.SupplierID,
		}
		if err := tx.QueryRowContext(ctx, `
            INSERT INTO workspaces (id, brand_id, supplier_id)
            VALUES ($1, $2, $3)
            RETURNING created_at, updated_at`, ws.ID, ws.BrandID, ws.SupplierID).
			Scan(&ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ws, nil
}

// Workspace

type Workspace struct {
	ID         string    `db:"id" json:"id"`
	BrandID    string    `db:"brand_id" json:"brand_id"`
	SupplierID string    `db:"supplier_id" json:"supplier_id"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

func (s *Storage) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	ws := &Workspace{}
	query := `SELECT * FROM workspaces WHERE id=$1`
	err := s.db.GetContext(ctx, ws, query, id)
	return ws, err
}

func (s *Storage) GetWorkspacesForBrand(ctx context.Context, brandID string) ([]Workspace, error) {
	workspaces := []Workspace{}
	query := `SELECT * FROM workspaces WHERE brand_id=$1 ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &workspaces, query, brandID)
	return workspaces, err
}

func (s *Storage) GetWorkspaceByPair(ctx context.Context, brandID, supplierID string) (*Workspace, error) {
	ws := &Workspace{}
	query := `SELECT * FROM workspaces WHERE brand_id=$1 AND supplier_id=$2`
	err := s.db.GetContext(ctx, ws, query, brandID, supplierID)
	return ws, err
}

// Message

type Message struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	Content     string    `db:"content" json:"content"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// WorkspaceMessage is a message joined with a summary of its sender.
type WorkspaceMessage struct {
	Message
	SenderEmail string `db:"sender_email" json:"sender_email"`
	SenderRole  string `db:"sender_role" json:"sender_role"`
}

func (s *Storage) CreateMessage(ctx context.Context, m *Message) error {
	m.ID = uuid.NewString()
	query := `
        INSERT INTO messages (id, workspace_id, sender_id, content, timestamp)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING timestamp`
	return s.db.QueryRowContext(ctx, query, m.ID, m.WorkspaceID, m.SenderID, m.Content).
		Scan(&m.Timestamp)
}

func (s *Storage) GetWorkspaceMessages(ctx context.Context, workspaceID string) ([]WorkspaceMessage, error) {
	messages := []WorkspaceMessage{}
	query := `
        SELECT m.*,
               u.email AS sender_email,
               u.role AS sender_role
        FROM messages m
        JOIN users u ON m.sender_id = u.id
        WHERE m.workspace_id = $1
        ORDER BY m.timestamp ASC`
	err := s.db.SelectContext(ctx, &messages, query, workspaceID)
	return messages, err
}

// Certification

type Certification struct {
	ID           string     `db:"id" json:"id"`
	SupplierID   string     `db:"supplier_id" json:"supplier_id"`
	Name         string     `db:"name" json:"name"`
	Status       string     `db:"status" json:"status"`
	UploadedFile string     `db:"uploaded_file" json:"uploaded_file"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateCertification(ctx context.Context, c *Certification) error {
	c.ID = uuid.NewString()
	query := `
        INSERT INTO certifications (id, supplier_id, name, status, uploaded_file, expiry_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		c.ID, c.SupplierID, c.Name, c.Status, c.UploadedFile, c.ExpiryDate).
		Scan(&c.CreatedAt)
}

func (s *Storage) GetSupplierCertifications(ctx context.Context, supplierID string) ([]Certification, error) {
	certifications := []Certification{}
	query := `
        SELECT * FROM certifications
        WHERE supplier_id = $1
        ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &certifications, query, supplierID)
	return certifications, err
}

// SupplyChainRoute

type SupplyChainRoute struct {
	ID        string         `db:"id" json:"id"`
	BrandID   string         `db:"brand_id" json:"brand_id"`
	ChainID   string         `db:"chain_id" json:"chain_id"`
	Suppliers pq.StringArray `db:"suppliers" json:"suppliers"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"-"`
}

func (s *Storage) CreateSupplyChainRoute(ctx context.Context, route *SupplyChainRoute) error {
	route.ID = uuid.NewString()
	query := `
        INSERT INTO supply_chain_routes (id, brand_id, chain_id, suppliers)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		route.ID, route.BrandID, route.ChainID, route.Suppliers).
		Scan(&route.CreatedAt, &route.UpdatedAt)
}

func (s *Storage) GetSupplyChainRoute(ctx context.Context, id, brandID string) (*SupplyChainRoute, error) {
	route := &SupplyChainRoute{}
	query := `SELECT * FROM supply_chain_routes WHERE id=$1 AND brand_id=$2`
	err := s.db.GetContext(ctx, route, query, id, brandID)
	return route, err
}

func (s *Storage) GetSupplyChainRoutesForBrand(ctx context.Context, brandID string) ([]SupplyChainRoute, error) {
	routes := []SupplyChainRoute{}
	query := `
        SELECT * FROM supply_chain_routes
        WHERE brand_id = $1 AND chain_id NOT ILIKE '%optimized%'
        ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &routes, query, brandID)
	return routes, err
}

// OptimizationResult

type OptimizationResult struct {
	ID            string         `db:"id" json:"id"`
	Type          string         `db:"type" json:"type"`
	BeforeChain   types.JSONText `db:"before_chain" json:"before_chain"`
	AfterChain    types.JSONText `db:"after_chain" json:"after_chain"`
	ImpactMetrics types.JSONText `db:"impact_metrics" json:"impact_metrics"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateOptimizationResult(ctx context.Context, o *OptimizationResult) error {
	o.ID = uuid.NewString()
	query := `
        INSERT INTO optimization_results (id, type, before_chain, after_chain, impact_metrics)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		o.ID, o.Type, o.BeforeChain, o.AfterChain, o.ImpactMetrics).
		Scan(&o.CreatedAt)
}
