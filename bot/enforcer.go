package bot

import (
	"fmt"
	"time"

	"telegram-group-manager-bot/moderation"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// telegramEnforcer adapts the Telegram Bot API to the moderation
// engine's enforcement interface. From the engine's point of view every
// call here is best-effort; the local store stays authoritative.
type telegramEnforcer struct {
	api *telego.Bot
}

func (e *telegramEnforcer) ResolveRole(groupID, userID int64) (moderation.Role, error) {
	member, err := e.api.GetChatMember(&telego.GetChatMemberParams{
		ChatID: tu.ID(groupID),
		UserID: userID,
	})
	if err != nil {
		return moderation.RoleMember, fmt.Errorf("failed to get chat member: %w", err)
	}
	return moderation.ParseRole(member.MemberStatus()), nil
}

func (e *telegramEnforcer) Ban(groupID, userID int64) error {
	return e.api.BanChatMember(&telego.BanChatMemberParams{
		ChatID: tu.ID(groupID),
		UserID: userID,
	})
}

func (e *telegramEnforcer) Unban(groupID, userID int64) error {
	return e.api.UnbanChatMember(&telego.UnbanChatMemberParams{
		ChatID: tu.ID(groupID),
		UserID: userID,
	})
}

func (e *telegramEnforcer) Restrict(groupID, userID int64, allowSend bool, until time.Time) error {
	params := &telego.RestrictChatMemberParams{
		ChatID:      tu.ID(groupID),
		UserID:      userID,
		Permissions: sendPermissions(allowSend),
	}
	if !until.IsZero() {
		params.UntilDate = until.Unix()
	}
	return e.api.RestrictChatMember(params)
}

func (e *telegramEnforcer) SetGroupPermissions(groupID int64, allowSend bool) error {
	return e.api.SetChatPermissions(&telego.SetChatPermissionsParams{
		ChatID:      tu.ID(groupID),
		Permissions: sendPermissions(allowSend),
	})
}

func sendPermissions(allowSend bool) telego.ChatPermissions {
	return telego.ChatPermissions{
		CanSendMessages:       telego.ToPtr(allowSend),
		CanSendAudios:         telego.ToPtr(allowSend),
		CanSendDocuments:      telego.ToPtr(allowSend),
		CanSendPhotos:         telego.ToPtr(allowSend),
		CanSendVideos:         telego.ToPtr(allowSend),
		CanSendVideoNotes:     telego.ToPtr(allowSend),
		CanSendVoiceNotes:     telego.ToPtr(allowSend),
		CanSendPolls:          telego.ToPtr(allowSend),
		CanSendOtherMessages:  telego.ToPtr(allowSend),
		CanAddWebPagePreviews: telego.ToPtr(allowSend),
		CanInviteUsers:        telego.ToPtr(true),
	}
}
