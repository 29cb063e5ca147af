package query

// Operator is a criteria operator keyword phrase.
type Operator int

const (
	OpInvalid Operator = iota

	// Field operators taking a quoted value
	OpIs
	OpIsNot
	OpIsGreaterThan
	OpIsLessThan
	OpIsSince
	OpIsUntil
	OpContains

	// Field operators without a value
	OpIsEmpty
	OpIsNotEmpty

	// Operators without a field or a value
	OpResolved
	OpUnresolved
	OpMentionedMe
	OpCreatedByMe
	OpRepliedByMe
	OpSubmittedByMe
	OpPublishedByMe
	OpSuccessful
	OpFailed
	OpCancelled
	OpTimedOut

	// Operators taking a quoted value but no field
	OpMentioned
	OpCreatedBy
	OpRepliedBy
	OpSubmittedBy
	OpPublishedBy
	OpOnCommit
	OpFixedInCommit
)

// Shape describes which operands an operator takes.
type Shape int

const (
	ShapeNone       Shape = iota
	ShapeUnary            // resolved
	ShapeValue            // mentioned "value"
	ShapeFieldUnary       // "field" is empty
	ShapeField            // "field" is "value"
)

var operators = []Operator{
	OpIs, OpIsNot, OpIsGreaterThan, OpIsLessThan, OpIsSince, OpIsUntil, OpContains,
	OpIsEmpty, OpIsNotEmpty,
	OpResolved, OpUnresolved, OpMentionedMe, OpCreatedByMe, OpRepliedByMe,
	OpSubmittedByMe, OpPublishedByMe, OpSuccessful, OpFailed, OpCancelled, OpTimedOut,
	OpMentioned, OpCreatedBy, OpRepliedBy, OpSubmittedBy, OpPublishedBy, OpOnCommit, OpFixedInCommit,
}

// Operators returns every operator the language knows, in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// String returns the canonical keyword phrase of the operator.
func (o Operator) String() string {
	switch o {
	case OpIs:
		return "is"
	case OpIsNot:
		return "is not"
	case OpIsGreaterThan:
		return "is greater than"
	case OpIsLessThan:
		return "is less than"
	case OpIsSince:
		return "is since"
	case OpIsUntil:
		return "is until"
	case OpContains:
		return "contains"
	case OpIsEmpty:
		return "is empty"
	case OpIsNotEmpty:
		return "is not empty"
	case OpResolved:
		return "resolved"
	case OpUnresolved:
		return "unresolved"
	case OpMentionedMe:
		return "mentioned me"
	case OpCreatedByMe:
		return "created by me"
	case OpRepliedByMe:
		return "replied by me"
	case OpSubmittedByMe:
		return "submitted by me"
	case OpPublishedByMe:
		return "published by me"
	case OpSuccessful:
		return "successful"
	case OpFailed:
		return "failed"
	case OpCancelled:
		return "cancelled"
	case OpTimedOut:
		return "timed out"
	case OpMentioned:
		return "mentioned"
	case OpCreatedBy:
		return "created by"
	case OpRepliedBy:
		return "replied by"
	case OpSubmittedBy:
		return "submitted by"
	case OpPublishedBy:
		return "published by"
	case OpOnCommit:
		return "on commit"
	case OpFixedInCommit:
		return "fixed in commit"
	default:
		return "invalid"
	}
}

// Shape returns the operand shape the operator requires.
func (o Operator) Shape() Shape {
	switch {
	case o >= OpIs && o <= OpContains:
		return ShapeField
	case o == OpIsEmpty || o == OpIsNotEmpty:
		return ShapeFieldUnary
	case o >= OpResolved && o <= OpTimedOut:
		return ShapeUnary
	case o >= OpMentioned && o <= OpFixedInCommit:
		return ShapeValue
	}
	return ShapeNone
}

// TakesField reports whether the operator follows a quoted field.
func (o Operator) TakesField() bool {
	s := o.Shape()
	return s == ShapeField || s == ShapeFieldUnary
}
