// Package authz composes authorization strategies from two capabilities: a
// transformer that extracts the target entity id from the action context and
// a permission checker that answers hasAccess(personID, entityID). The four
// coordinator/administrator policies are configured instances of one generic
// strategy, not separate implementations.
package authz

import (
	"context"
	"fmt"
	"strings"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-action/mapper"
	"github.com/goliatone/go-action/transform"
)

// Checker is the permission-check capability: whether a person has access to
// an entity. Recursive policies (coordinator of the entity or any ancestor)
// live behind this interface.
type Checker[E any] interface {
	HasAccess(ctx context.Context, personID int64, entityID E) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc[E any] func(ctx context.Context, personID int64, entityID E) (bool, error)

func (f CheckerFunc[E]) HasAccess(ctx context.Context, personID int64, entityID E) (bool, error) {
	return f(ctx, personID, entityID)
}

// Authorizer is the generic permission strategy: derive the target entity id
// from the context, ask the checker, deny on false. Checker errors are
// infrastructure failures and propagate unchanged. A locked principal is
// always denied.
type Authorizer[P, E any] struct {
	Target  transform.Transformer[P, E]
	Checker Checker[E]
	// Message names the denied capability in the AuthorizationError.
	Message string
}

func (a Authorizer[P, E]) Authorize(ctx context.Context, ac *action.ActionContext[P]) error {
	principal, ok := ac.Principal()
	if !ok {
		return action.NewAuthorizationError("no principal on context")
	}
	if principal.AccountLocked {
		return action.NewAuthorizationError("account " + principal.AccountID + " is locked")
	}

	entityID, err := a.Target.Transform(ctx, ac)
	if err != nil {
		return err
	}

	allowed, err := a.Checker.HasAccess(ctx, principal.ID, entityID)
	if err != nil {
		return err
	}
	if !allowed {
		return action.NewAuthorizationError(a.denialMessage(principal.ID, entityID))
	}
	return nil
}

func (a Authorizer[P, E]) denialMessage(personID int64, entityID E) string {
	msg := a.Message
	if msg == "" {
		msg = "insufficient permissions"
	}
	return fmt.Sprintf("%s (person %d, target %v)", msg, personID, entityID)
}

// NewOrgCoordinator authorizes principals who coordinate the target
// organization or any ancestor organization.
func NewOrgCoordinator[P, E any](target transform.Transformer[P, E], checker Checker[E]) Authorizer[P, E] {
	return Authorizer[P, E]{
		Target:  target,
		Checker: checker,
		Message: "not a coordinator of the organization or an ancestor",
	}
}

// NewGroupCoordinator authorizes principals who coordinate the target group
// or any ancestor organization in its tree.
func NewGroupCoordinator[P, E any](target transform.Transformer[P, E], checker Checker[E]) Authorizer[P, E] {
	return Authorizer[P, E]{
		Target:  target,
		Checker: checker,
		Message: "not a coordinator of the group or a parent organization",
	}
}

// NewRootOrgCoordinator authorizes principals whose id appears in the
// coordinator set of the single root organization. The target entity is
// irrelevant; the root org id comes from its own lookup mapper.
func NewRootOrgCoordinator[P any](
	rootOrgID mapper.DomainMapper[struct{}, int64],
	coordinators mapper.DomainMapper[int64, []int64],
) Authorizer[P, int64] {
	checker := CheckerFunc[int64](func(ctx context.Context, personID int64, _ int64) (bool, error) {
		orgID, err := rootOrgID.Execute(ctx, struct{}{})
		if err != nil {
			return false, err
		}
		ids, err := coordinators.Execute(ctx, orgID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == personID {
				return true, nil
			}
		}
		return false, nil
	})
	return Authorizer[P, int64]{
		Target:  constantTarget[P](),
		Checker: checker,
		Message: "not a coordinator of the root organization",
	}
}

// NewSystemAdministrator authorizes principals present in the globally
// maintained administrator id list.
func NewSystemAdministrator[P any](administrators mapper.DomainMapper[struct{}, []int64]) Authorizer[P, int64] {
	checker := CheckerFunc[int64](func(ctx context.Context, personID int64, _ int64) (bool, error) {
		ids, err := administrators.Execute(ctx, struct{}{})
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == personID {
				return true, nil
			}
		}
		return false, nil
	})
	return Authorizer[P, int64]{
		Target:  constantTarget[P](),
		Checker: checker,
		Message: "not a system administrator",
	}
}

// constantTarget ignores params for policies that only depend on the
// principal.
func constantTarget[P any]() transform.Transformer[P, int64] {
	return transform.TransformerFunc[P, int64](func(context.Context, *action.ActionContext[P]) (int64, error) {
		return 0, nil
	})
}

// FormSubmitter authorizes a form submission only when the account id
// embedded in the submitted fields matches the principal's account id,
// case-insensitively. A missing field denies the request.
type FormSubmitter[P any] struct {
	FieldName string
	Fields    func(P) map[string]string
}

func (a FormSubmitter[P]) Authorize(_ context.Context, ac *action.ActionContext[P]) error {
	principal, ok := ac.Principal()
	if !ok {
		return action.NewAuthorizationError("no principal on context")
	}

	fields := a.Fields(ac.Params())
	submitted, ok := fields[a.FieldName]
	if !ok {
		return action.NewAuthorizationError("form has no field " + a.FieldName)
	}

	if !strings.EqualFold(submitted, principal.AccountID) {
		return action.NewAuthorizationError("form was not submitted by account " + principal.AccountID)
	}
	return nil
}
