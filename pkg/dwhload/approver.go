package dwhload

import "context"

// Approver confirms the destructive drop of every warehouse table.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts the operator to type the database name
type Approver interface {
	// RequestApproval asks for confirmation before the tables in target are
	// dropped and recreated. Returns false when the operator declines.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
