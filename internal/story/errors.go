package story

import "errors"

var (
	ErrInvalidNodeType      = errors.New("invalid node type")
	ErrInvalidEdgeReference = errors.New("edge references unknown node")
	ErrUnknownField         = errors.New("field not declared for node type")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrNodeNotFound         = errors.New("node not found")
	ErrEdgeNotFound         = errors.New("edge not found")
	ErrDuplicateBegin       = errors.New("graph already has a begin node")
)
