package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTenantRequired is returned when a query is issued without a tenant
var ErrTenantRequired = errors.New("tenant id is required")

// QuerySpec describes how list filters map onto the columns of one table.
// Filter keys that are not listed here are ignored, so callers can never
// reach tenant_id or other unlisted columns.
type QuerySpec struct {
	// Resource names the entity in error messages
	Resource string
	// SearchColumns are matched case-insensitively with OR
	SearchColumns []string
	// ExactColumns maps filter keys to columns compared with =
	ExactColumns map[string]string
	// RangeColumns maps range keys to columns compared with >= and <=
	RangeColumns map[string]string
	// BoolColumns maps filter keys to boolean columns
	BoolColumns map[string]string
	// FromColumns maps filter keys to columns compared with >=, used for
	// date bounds carried as time.Time filter values
	FromColumns map[string]string
	// ToColumns maps filter keys to columns compared with <=
	ToColumns map[string]string
	// SortColumns maps sort keys to sortable columns, in addition to
	// id, createdAt and updatedAt
	SortColumns map[string]string
	// DefaultSort is used when the requested sort key is unknown
	DefaultSort string
	// CodeColumn is the tenant-unique business code, empty when none
	CodeColumn string
	// Preload lists associations loaded with every read
	Preload []string
	// PreloadOrder optionally orders a preloaded association
	PreloadOrder map[string]string
}

func (s QuerySpec) sortColumn(key string) string {
	def := s.DefaultSort
	if def == "" {
		def = "created_at"
	}
	return ValidateSortField(key, sortColumns(s.SortColumns), def)
}

// TenantScopedRepository is the generic tenant-scoped CRUD store behind the
// entity repositories
type TenantScopedRepository[T any] struct {
	db   *gorm.DB
	spec QuerySpec
}

// NewTenantScopedRepository creates a repository for T described by spec
func NewTenantScopedRepository[T any](db *gorm.DB, spec QuerySpec) *TenantScopedRepository[T] {
	if spec.Resource == "" {
		spec.Resource = "Resource"
	}
	return &TenantScopedRepository[T]{db: db, spec: spec}
}

// DB returns the handle the repository was built on
func (r *TenantScopedRepository[T]) DB() *gorm.DB {
	return r.db
}

// scoped returns a tenant-scoped session bound to ctx
func (r *TenantScopedRepository[T]) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	var model T
	return r.db.WithContext(ctx).Model(&model).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant loads one entity of the tenant
func (r *TenantScopedRepository[T]) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*T, error) {
	var entity T
	q := r.preload(r.db.WithContext(ctx).Scopes(TenantScope(tenantID)))
	if err := q.Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, r.spec.Resource, "")
	}
	return &entity, nil
}

// FindAllForTenant returns one page of the tenant's entities
func (r *TenantScopedRepository[T]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[T], error) {
	filter = filter.Normalize()

	var total int64
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).Count(&total).Error; err != nil {
		return shared.Paginated[T]{}, fmt.Errorf("count %s: %w", strings.ToLower(r.spec.Resource), err)
	}

	var items []T
	q := r.preload(r.applyFilter(r.db.WithContext(ctx).Scopes(TenantScope(tenantID)), filter))
	err := q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: r.spec.sortColumn(filter.OrderBy)},
		Desc:   filter.OrderDir == "desc",
	}).
		Order("id").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return shared.Paginated[T]{}, fmt.Errorf("list %s: %w", strings.ToLower(r.spec.Resource), err)
	}

	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (r *TenantScopedRepository[T]) preload(q *gorm.DB) *gorm.DB {
	for _, assoc := range r.spec.Preload {
		if order, ok := r.spec.PreloadOrder[assoc]; ok {
			q = q.Preload(assoc, func(db *gorm.DB) *gorm.DB { return db.Order(order) })
			continue
		}
		q = q.Preload(assoc)
	}
	return q
}

// CountForTenant counts the tenant's entities matching filter
func (r *TenantScopedRepository[T]) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var total int64
	err := r.applyFilter(r.scoped(ctx, tenantID), filter.Normalize()).Count(&total).Error
	return total, err
}

// ListForTenant returns every entity of the tenant, unpaged
func (r *TenantScopedRepository[T]) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]T, error) {
	var items []T
	err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Order("created_at").Find(&items).Error
	return items, err
}

// Create inserts entity under tenantID, rejecting duplicate codes
func (r *TenantScopedRepository[T]) Create(ctx context.Context, tenantID uuid.UUID, entity *T) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	if owned, ok := any(entity).(shared.TenantOwned); ok {
		owned.AssignTenant(tenantID)
	}
	code := codeOf(entity)
	if err := r.ensureCodeAvailable(ctx, tenantID, code, uuid.Nil); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
	return translate(err, r.spec.Resource, code)
}

// Update saves entity, which must already belong to tenantID
func (r *TenantScopedRepository[T]) Update(ctx context.Context, tenantID uuid.UUID, entity *T) error {
	owned, ok := any(entity).(shared.TenantOwned)
	if !ok {
		return fmt.Errorf("%s is not tenant owned", r.spec.Resource)
	}
	if owned.GetTenantID() != tenantID {
		return shared.NotFound(r.spec.Resource)
	}
	code := codeOf(entity)
	if err := r.ensureCodeAvailable(ctx, tenantID, code, owned.GetID()); err != nil {
		return err
	}
	result := r.scoped(ctx, tenantID).
		Where("id = ?", owned.GetID()).
		Select("*").
		Omit("id", "tenant_id", "created_at", clause.Associations).
		Updates(entity)
	if result.Error != nil {
		return translate(result.Error, r.spec.Resource, code)
	}
	if result.RowsAffected == 0 {
		return shared.NotFound(r.spec.Resource)
	}
	return nil
}

// DeleteForTenant removes one entity of the tenant
func (r *TenantScopedRepository[T]) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	var model T
	result := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return translate(result.Error, r.spec.Resource, "")
	}
	if result.RowsAffected == 0 {
		return shared.NotFound(r.spec.Resource)
	}
	return nil
}

// CountWhere counts rows of model in the tenant whose column equals value.
// Used for dependent checks before deletes.
func (r *TenantScopedRepository[T]) CountWhere(ctx context.Context, tenantID uuid.UUID, model any, column string, value any) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).
		Scopes(TenantScope(tenantID)).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Count(&n).Error
	return n, err
}

// ExistsByCode reports whether another entity of the tenant uses code
func (r *TenantScopedRepository[T]) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error) {
	if r.spec.CodeColumn == "" || code == "" {
		return false, nil
	}
	q := r.scoped(ctx, tenantID).Where(clause.Eq{Column: clause.Column{Name: r.spec.CodeColumn}, Value: code})
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TenantScopedRepository[T]) ensureCodeAvailable(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) error {
	exists, err := r.ExistsByCode(ctx, tenantID, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.DuplicateCode(r.spec.Resource, code)
	}
	return nil
}

// applyFilter applies search, exact, boolean and range filters
func (r *TenantScopedRepository[T]) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(filter.Search); term != "" && len(r.spec.SearchColumns) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		exprs := make([]clause.Expression, 0, len(r.spec.SearchColumns))
		for _, col := range r.spec.SearchColumns {
			exprs = append(exprs, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: col}, pattern}})
		}
		query = query.Where(clause.Or(exprs...))
	}

	for key, value := range filter.Filters {
		if col, ok := r.spec.ExactColumns[key]; ok {
			query = query.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value})
			continue
		}
		if col, ok := r.spec.BoolColumns[key]; ok {
			if b, ok := value.(bool); ok {
				query = query.Where(clause.Eq{Column: clause.Column{Name: col}, Value: b})
			}
			continue
		}
		if col, ok := r.spec.FromColumns[key]; ok {
			query = query.Where(clause.Gte{Column: clause.Column{Name: col}, Value: value})
			continue
		}
		if col, ok := r.spec.ToColumns[key]; ok {
			query = query.Where(clause.Lte{Column: clause.Column{Name: col}, Value: value})
		}
	}

	for key, rng := range filter.Ranges {
		col, ok := r.spec.RangeColumns[key]
		if !ok {
			continue
		}
		if rng.Min != nil {
			query = query.Where(clause.Gte{Column: clause.Column{Name: col}, Value: *rng.Min})
		}
		if rng.Max != nil {
			query = query.Where(clause.Lte{Column: clause.Column{Name: col}, Value: *rng.Max})
		}
	}

	return query
}

func codeOf(entity any) string {
	if c, ok := entity.(shared.Coded); ok {
		return c.GetCode()
	}
	return ""
}
