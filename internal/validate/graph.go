package validate

import (
	"context"
	"fmt"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/graphdb"
)

// GraphChecker is implemented by graphdb.Client.
type GraphChecker interface {
	ListUnreachableSteps(ctx context.Context, storyID string) ([]graphdb.Step, error)
	ListDeadEnds(ctx context.Context, storyID string) ([]graphdb.Step, error)
}

// RunGraph reports structural problems of a story already pushed to the
// graph mirror.
func RunGraph(ctx context.Context, storyID string, checker GraphChecker) (*Report, error) {
	if checker == nil {
		return nil, fmt.Errorf("graph checker is required")
	}

	issues := make([]Issue, 0)

	unreachable, err := checker.ListUnreachableSteps(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("list unreachable steps: %w", err)
	}
	for _, step := range unreachable {
		issues = append(issues, issueFromStep(storyID, step, SeverityWarn, codeUnreachableNode, "step cannot be reached from the begin step"))
	}

	deadEnds, err := checker.ListDeadEnds(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("list dead ends: %w", err)
	}
	for _, step := range deadEnds {
		issues = append(issues, issueFromStep(storyID, step, SeverityWarn, codeDeadEnd, "step has no outgoing link"))
	}

	return &Report{Issues: issues}, nil
}

func issueFromStep(storyID string, step graphdb.Step, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Story:    storyID,
		Node:     step.ID,
	}
}
