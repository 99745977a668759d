package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

// treeStore exposes the parent links of one self-referencing table.
type treeStore interface {
	ChildIDs(ctx context.Context, exec sqlx.ExtContext, parentIDs []int64) ([]int64, error)
	ParentID(ctx context.Context, exec sqlx.ExtContext, id int64) (*int64, error)
	LockHierarchy(ctx context.Context, exec sqlx.ExtContext) error
}

// collectSubtree returns root followed by every descendant, one query per tree level.
func collectSubtree(ctx context.Context, store treeStore, exec sqlx.ExtContext, root int64) ([]int64, error) {
	ids := []int64{root}
	seen := map[int64]bool{root: true}
	level := []int64{root}
	for len(level) > 0 {
		children, err := store.ChildIDs(ctx, exec, level)
		if err != nil {
			return nil, err
		}
		var next []int64
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			next = append(next, id)
		}
		level = next
	}
	return ids, nil
}

// ensureAcyclic checks that parent exists and that attaching node under it keeps the tree a
// tree: parent may be neither node itself nor one of its descendants. The hierarchy lock is held
// until the caller's transaction ends, so two concurrent moves cannot each pass the walk.
func ensureAcyclic(ctx context.Context, store treeStore, exec sqlx.ExtContext, kind string, node, parent int64) error {
	if parent == node {
		return appErrors.Clone(appErrors.ErrReferentialIntegrity, fmt.Sprintf("%s %d cannot be its own parent", kind, node))
	}
	if err := store.LockHierarchy(ctx, exec); err != nil {
		return storeError(err, "failed to lock "+kind+" hierarchy")
	}
	seen := map[int64]bool{}
	for current := parent; !seen[current]; {
		seen[current] = true
		next, err := store.ParentID(ctx, exec, current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrReferentialIntegrity, fmt.Sprintf("parent %s %d does not exist", kind, parent))
			}
			return storeError(err, "failed to walk "+kind+" ancestors")
		}
		if next == nil {
			return nil
		}
		if *next == node {
			return appErrors.Clone(appErrors.ErrReferentialIntegrity, fmt.Sprintf("%s %d cannot be moved under its own descendant %d", kind, node, parent))
		}
		current = *next
	}
	return nil
}

// groupByParent indexes items by parent id, keeping their input order.
func groupByParent[T any](items []T, parentOf func(T) *int64) map[int64][]T {
	index := make(map[int64][]T)
	for _, item := range items {
		if parent := parentOf(item); parent != nil {
			index[*parent] = append(index[*parent], item)
		}
	}
	return index
}
