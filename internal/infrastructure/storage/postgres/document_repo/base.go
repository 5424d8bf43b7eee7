// Package document_repo provides PostgreSQL implementations for document repositories.
// Documents are append-only, so there is no update or delete path.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides common insert and read operations for documents.
type BaseDocumentRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T]) insertQuery(e T) squirrel.InsertBuilder {
	return r.Builder().
		Insert(r.tableName).
		SetMap(postgres.Pick(postgres.StructToMap(e), r.selectCols))
}

// insert writes the header row.
func (r *BaseDocumentRepo[T]) insert(ctx context.Context, e T) error {
	sql, args, err := r.insertQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.StorageError("insert "+r.tableName, err)
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// getByID retrieves a document header by ID.
func (r *BaseDocumentRepo[T]) getByID(ctx context.Context, docID id.ID) (T, error) {
	e := r.newFn()

	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": docID}).ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entityName, docID.String())
		}
		return e, postgres.StorageError("get "+r.tableName, err)
	}
	return e, nil
}

func (r *BaseDocumentRepo[T]) findAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []T{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.StorageError("list "+r.tableName, err)
	}
	return items, nil
}

// page counts q, then returns one page of it newest first.
func (r *BaseDocumentRepo[T]) page(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
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

	items, err := r.findAll(ctx, newestFirst(q).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)))
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// byParty selects a party's documents in document order.
func (r *BaseDocumentRepo[T]) byParty(partyID id.ID, dates domain.DateRange) squirrel.SelectBuilder {
	return withDates(r.baseSelect().Where(squirrel.Eq{"party_id": partyID}), dates).
		OrderBy("date", "created_at", "id")
}

func newestFirst(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.OrderBy("date DESC", "created_at DESC", "id DESC")
}

func withDates(q squirrel.SelectBuilder, dates domain.DateRange) squirrel.SelectBuilder {
	if dates.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *dates.From})
	}
	if dates.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *dates.To})
	}
	return q
}
