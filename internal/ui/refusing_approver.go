package ui

import (
	"context"
	"fmt"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// RefusingApprover denies every reset. It stands in for a prompt when no
// operator can answer one, so unattended runs must pass --force.
type RefusingApprover struct{}

// RequestApproval always returns an error wrapping dwhload.ErrApprovalDenied.
func (RefusingApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	return false, fmt.Errorf("refusing to drop tables in '%s' without a terminal; rerun with --force: %w",
		target, dwhload.ErrApprovalDenied)
}

var _ dwhload.Approver = RefusingApprover{}
