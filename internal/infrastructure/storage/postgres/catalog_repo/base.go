// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T entity.Versioned] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	updateCols []string
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository. Columns listed in
// readOnly are inserted but never updated.
func NewBaseCatalogRepo[T entity.Versioned](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
	readOnly ...string,
) *BaseCatalogRepo[T] {
	skip := append([]string{"id", "created_at", "version", "updated_at"}, readOnly...)
	updateCols := make([]string, 0, len(selectCols))
	for _, col := range selectCols {
		if !slices.Contains(skip, col) {
			updateCols = append(updateCols, col)
		}
	}

	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		updateCols: updateCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, e T) error {
	sql, args, err := r.insertQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.StorageError("insert "+r.tableName, err)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) insertQuery(e T) squirrel.InsertBuilder {
	return r.Builder().
		Insert(r.tableName).
		SetMap(postgres.Pick(postgres.StructToMap(e), r.selectCols))
}

// Update writes the entity if its version is unchanged since it was read and
// stores the bumped version and timestamp back into it.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, e T) error {
	meta := e.Versioning()

	sql, args, err := r.updateQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	var version int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&version, &meta.UpdatedAt)
	if err != nil {
		if pgxscan.NotFound(err) {
			return r.missingOrStale(ctx, meta.ID)
		}
		return postgres.StorageError("update "+r.tableName, err)
	}
	meta.Version = version
	return nil
}

func (r *BaseCatalogRepo[T]) updateQuery(e T) squirrel.UpdateBuilder {
	meta := e.Versioning()
	return r.Builder().
		Update(r.tableName).
		SetMap(postgres.Pick(postgres.StructToMap(e), r.updateCols)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": meta.ID}).
		Where(squirrel.Eq{"version": meta.Version}).
		Suffix("RETURNING version, updated_at")
}

// missingOrStale tells a deleted row from a lost optimistic lock.
func (r *BaseCatalogRepo[T]) missingOrStale(ctx context.Context, entityID id.ID) error {
	var exists bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", r.tableName), entityID,
	).Scan(&exists)
	if err != nil {
		return postgres.StorageError("check "+r.tableName, err)
	}
	if !exists {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return apperror.NewConcurrentModification(r.entityName, entityID.String())
}

// baseSelect creates a SELECT builder.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1))
	if apperror.IsNotFound(err) {
		return e, apperror.NewNotFound(r.entityName, entityID.String())
	}
	return e, err
}

// FindOne runs q and scans the single row it returns.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entityName, "")
		}
		return e, postgres.StorageError("get "+r.tableName, err)
	}
	return e, nil
}

// FindAll runs q and scans every row.
func (r *BaseCatalogRepo[T]) FindAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.StorageError("list "+r.tableName, err)
	}
	return items, nil
}

// searchWhere matches name, plus any extra columns, case-insensitively.
func searchWhere(search string, extra ...string) squirrel.Sqlizer {
	pattern := "%" + search + "%"
	or := squirrel.Or{squirrel.ILike{"name": pattern}}
	for _, col := range extra {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return or
}

// Page pages through q ordered by name.
func (r *BaseCatalogRepo[T]) Page(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, postgres.StorageError("count "+r.tableName, err)
	}

	items, err := r.FindAll(ctx, q.OrderBy("name", "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)))
	if err != nil {
		return result, err
	}
	result.Items = items
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}
