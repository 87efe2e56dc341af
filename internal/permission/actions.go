package permission

import "github.com/noah-isme/alumni-portal/internal/models"

// Action is an affordance that may appear in a row's action menu.
type Action string

const (
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
	ActionActivate         Action = "activate"
	ActionDeactivate       Action = "deactivate"
	ActionBlock            Action = "block"
	ActionUnblock          Action = "unblock"
	ActionPromoteModerator Action = "promote_moderator"
	ActionDemoteModerator  Action = "demote_moderator"
	ActionDelete           Action = "delete"
)

// Destructive reports whether a must be confirmed before it is dispatched.
func (a Action) Destructive() bool {
	return a == ActionDelete || a == ActionBlock
}

// Label is the human-readable menu text.
func (a Action) Label() string {
	switch a {
	case ActionApprove:
		return "Approve"
	case ActionReject:
		return "Reject"
	case ActionActivate:
		return "Activate"
	case ActionDeactivate:
		return "Deactivate"
	case ActionBlock:
		return "Block"
	case ActionUnblock:
		return "Unblock"
	case ActionPromoteModerator:
		return "Make moderator"
	case ActionDemoteModerator:
		return "Remove moderator"
	case ActionDelete:
		return "Delete"
	}
	return string(a)
}

// ActionsFor returns the user-management menu actor sees for target. The
// result is empty for protected targets, for the actor's own row, for actors
// without ManageUsers, and for moderator-only actors when the target is not
// pending or rejected.
func ActionsFor(actor, target models.User) []Action {
	if !CanModifyUser(target) || (actor.ID != "" && actor.ID == target.ID) {
		return nil
	}
	if !Can(actor, ManageUsers) {
		return nil
	}

	if !actor.HasRole(models.RoleAdmin) {
		switch target.Status {
		case models.StatusPending:
			return []Action{ActionApprove, ActionReject}
		case models.StatusRejected:
			return []Action{ActionApprove}
		default:
			return nil
		}
	}

	var actions []Action
	switch target.Status {
	case models.StatusPending:
		actions = append(actions, ActionApprove, ActionReject)
	case models.StatusRejected:
		actions = append(actions, ActionApprove)
	case models.StatusActive:
		actions = append(actions, ActionDeactivate)
	case models.StatusInactive:
		actions = append(actions, ActionActivate)
	}
	if Can(actor, BlockUser) {
		if target.Status == models.StatusBlocked {
			actions = append(actions, ActionUnblock)
		} else if target.Status == models.StatusActive || target.Status == models.StatusInactive {
			actions = append(actions, ActionBlock)
		}
	}
	if Can(actor, ChangeUserRole) {
		if target.HasRole(models.RoleModerator) {
			actions = append(actions, ActionDemoteModerator)
		} else {
			actions = append(actions, ActionPromoteModerator)
		}
	}
	if Can(actor, DeleteUser) {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// PostActionsFor returns the moderation menu actor sees for post.
func PostActionsFor(actor models.User, post models.Post) []Action {
	if !Can(actor, ModeratePosts) {
		return nil
	}
	var actions []Action
	switch post.Status {
	case models.PostPendingApproval:
		actions = append(actions, ActionApprove, ActionReject)
	case models.PostActive:
		actions = append(actions, ActionDeactivate)
	case models.PostInactive:
		actions = append(actions, ActionActivate)
	}
	if Can(actor, ManageAnnouncements) {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// Allows reports whether a is contained in actions.
func Allows(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}
