package dispatch

import (
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// Validate checks an action before it is sent.
func (a Action) Validate() error {
	fields := map[string]string{}
	if a.TargetID == "" {
		fields["targetId"] = "Target is required"
	}
	switch a.Entity {
	case models.EntityUser, models.EntityPost, models.EntityGallery:
	default:
		fields["entity"] = "Unknown entity"
	}

	switch a.Kind {
	case KindUpdateStatus:
		switch a.Entity {
		case models.EntityUser:
			if !models.UserStatus(a.Payload.Status).Valid() {
				fields["status"] = "Unknown user status"
			}
		case models.EntityPost:
			if !models.PostStatus(a.Payload.Status).Valid() {
				fields["status"] = "Unknown post status"
			}
		default:
			fields["status"] = "Status cannot be changed for this entity"
		}
	case KindUpdateRole, KindRemoveRole:
		if a.Entity != models.EntityUser {
			fields["entity"] = "Roles apply to users only"
		}
		if !a.Payload.Role.Valid() {
			fields["role"] = "Unknown role"
		}
	case KindUpdateProfile:
		if a.Entity != models.EntityUser {
			fields["entity"] = "Profiles apply to users only"
		}
		if len(a.Payload.Fields) == 0 {
			fields["fields"] = "Nothing to update"
		}
	case KindDelete:
	default:
		fields["kind"] = "Unknown action"
	}

	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid action"), fields)
	}
	return nil
}

// ForUser maps a directory menu action onto a mutation.
func ForUser(a permission.Action, id string) (Action, error) {
	out := Action{Entity: models.EntityUser, TargetID: id}
	switch a {
	case permission.ActionApprove, permission.ActionActivate, permission.ActionUnblock:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.StatusActive)
	case permission.ActionReject:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.StatusRejected)
	case permission.ActionDeactivate:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.StatusInactive)
	case permission.ActionBlock:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.StatusBlocked)
	case permission.ActionPromoteModerator:
		out.Kind, out.Payload.Role = KindUpdateRole, models.RoleModerator
	case permission.ActionDemoteModerator:
		out.Kind, out.Payload.Role = KindRemoveRole, models.RoleModerator
	case permission.ActionDelete:
		out.Kind = KindDelete
	default:
		return Action{}, appErrors.Clone(appErrors.ErrValidation, "unknown user action")
	}
	return out, nil
}

// ForPost maps a moderation menu action onto a mutation.
func ForPost(a permission.Action, id string) (Action, error) {
	out := Action{Entity: models.EntityPost, TargetID: id}
	switch a {
	case permission.ActionApprove, permission.ActionActivate:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.PostActive)
	case permission.ActionReject, permission.ActionDeactivate:
		out.Kind, out.Payload.Status = KindUpdateStatus, string(models.PostInactive)
	case permission.ActionDelete:
		out.Kind = KindDelete
	default:
		return Action{}, appErrors.Clone(appErrors.ErrValidation, "unknown post action")
	}
	return out, nil
}
