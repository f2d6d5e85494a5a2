package audit

import (
	"context"
	"strconv"

	"github.com/Gorstka/Yatube/pkg/log"
)

// Audit actions.
const (
	ActionSignup         = "user.signup"
	ActionLogin          = "user.login"
	ActionLoginFailed    = "user.login_failed"
	ActionLogout         = "user.logout"
	ActionDeleteUser     = "user.delete"
	ActionCreatePost     = "post.create"
	ActionEditPost       = "post.edit"
	ActionEditDenied     = "post.edit_denied"
	ActionDeletePost     = "post.delete"
	ActionCreateComment  = "comment.create"
	ActionFollow         = "follow.create"
	ActionUnfollow       = "follow.delete"
	ActionCreateGroup    = "group.create"
	ActionDeleteGroup    = "group.delete"
	ActionClearPageCache = "cache.clear"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry about a specific object.
func LogTarget(ctx context.Context, action string, userID uint, targetID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldTargetID, strconv.FormatUint(uint64(targetID), 10)).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID uint, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
