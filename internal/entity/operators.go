package entity

import "github.com/zjrosen/sieve/internal/query"

const (
	is         = query.OpIs
	isNot      = query.OpIsNot
	greater    = query.OpIsGreaterThan
	less       = query.OpIsLessThan
	since      = query.OpIsSince
	until      = query.OpIsUntil
	contains   = query.OpContains
	isEmpty    = query.OpIsEmpty
	isNotEmpty = query.OpIsNotEmpty
)

func ops(o ...query.Operator) []query.Operator {
	return o
}
