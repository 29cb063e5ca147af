package compiler

import (
	"context"
	"fmt"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// builder folds one parse tree into criteria.
type builder[R any] struct {
	ctx    context.Context
	c      *Compiler
	schema *criteria.Schema[R]
	qc     QueryContext
	me     *User
}

func (b *builder[R]) build(expr query.Expr) (criteria.Criteria[R], error) {
	switch e := expr.(type) {
	case *query.OrExpr:
		children, err := b.buildAll(e.Terms)
		if err != nil {
			return nil, err
		}
		return criteria.NewOr(children...), nil

	case *query.AndExpr:
		children, err := b.buildAll(e.Terms)
		if err != nil {
			return nil, err
		}
		return criteria.NewAnd(children...), nil

	case *query.NotExpr:
		child, err := b.build(e.Expr)
		if err != nil {
			return nil, err
		}
		return criteria.NewNot(child), nil

	case *query.ParenExpr:
		child, err := b.build(e.Expr)
		if err != nil {
			return nil, err
		}
		return criteria.NewParens(child), nil

	case *query.FieldExpr:
		return b.buildField(e)

	case *query.OperatorExpr:
		return b.buildOperator(e)

	case *query.FuzzyExpr:
		fields := b.schema.FuzzyFields()
		if len(fields) == 0 {
			return nil, newError(ErrOperatorNotSupported, "criteria '%s' is not supported here", query.QuoteFuzzy(e.Text))
		}
		return criteria.NewFuzzyCriteria(fields, e.Text), nil
	}
	return nil, fmt.Errorf("unexpected expression %T", expr)
}

func (b *builder[R]) buildAll(terms []query.Expr) ([]criteria.Criteria[R], error) {
	children := make([]criteria.Criteria[R], 0, len(terms))
	for _, term := range terms {
		child, err := b.build(term)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (b *builder[R]) buildField(e *query.FieldExpr) (criteria.Criteria[R], error) {
	f, ok := b.schema.Field(e.Field)
	if !ok {
		return nil, newError(ErrFieldNotFound, "field not found: %s", e.Field)
	}
	if !f.Allows(e.Op) {
		return nil, newError(ErrOperatorNotApplicable, "field '%s' is not applicable for operator '%s'", e.Field, e.Op)
	}
	if e.Op.Shape() != query.ShapeField {
		return criteria.NewFieldCriteria(f, e.Op, criteria.Value{}, ""), nil
	}
	v, literal, err := b.decodeValue(f, e.Value)
	if err != nil {
		return nil, err
	}
	return criteria.NewFieldCriteria(f, e.Op, v, literal), nil
}

func (b *builder[R]) buildOperator(e *query.OperatorExpr) (criteria.Criteria[R], error) {
	rule, f, ok := b.schema.Rule(e.Op)
	if !ok {
		return nil, newError(ErrOperatorNotSupported, "criteria '%s' is not supported here", e.Op)
	}

	switch rule.Subject {
	case criteria.SubjectCurrentUser:
		u, err := b.currentUser(e.Op.String())
		if err != nil {
			return nil, err
		}
		return criteria.NewOperatorCriteria(rule, f, criteria.User(u.ID), ""), nil
	case criteria.SubjectUser:
		u, err := b.resolveUser(e.Value)
		if err != nil {
			return nil, err
		}
		return criteria.NewOperatorCriteria(rule, f, criteria.User(u.ID), e.Value), nil
	case criteria.SubjectCommit:
		hash, err := b.resolveCommit(e.Value)
		if err != nil {
			return nil, err
		}
		return criteria.NewOperatorCriteria(rule, f, criteria.Commit(hash), e.Value), nil
	}
	return criteria.NewOperatorCriteria(rule, f, rule.Value, ""), nil
}
