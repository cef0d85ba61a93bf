package movable

import "errors"

// Common errors for movable operations
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrTargetNotFound  = errors.New("target item not found")
	ErrItemExists      = errors.New("item already present in list")
	ErrInvalidPosition = errors.New("invalid position")
	ErrEmptyItemID     = errors.New("item ID cannot be empty")
	ErrEmptyTargetID   = errors.New("target ID cannot be empty")
	ErrEmptyScope      = errors.New("scope cannot be empty")
	ErrSelfReference   = errors.New("cannot move item relative to itself")
	ErrDuplicateID     = errors.New("duplicate item id")
	ErrInvalidConfig   = errors.New("invalid ordering config")
	ErrReadOnlyStore   = errors.New("store cannot add or remove items")
)
