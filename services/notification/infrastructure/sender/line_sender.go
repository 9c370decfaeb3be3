package sender

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// RecipientResolver maps an account id to its linked LINE user id.
type RecipientResolver interface {
	LineUserID(ctx context.Context, userID string) (string, error)
}

// Pusher is the part of the LINE Messaging API client LineSender uses.
// *messaging_api.MessagingApiAPI satisfies it.
type Pusher interface {
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// LineSender pushes reminders as LINE text messages.
type LineSender struct {
	api        Pusher
	recipients RecipientResolver
	log        logger.Logger
	loc        *time.Location
}

// NewLineSender returns a LineSender. Trigger times in the message text are
// shown in loc, or UTC when loc is nil.
func NewLineSender(api Pusher, recipients RecipientResolver, loc *time.Location, log logger.Logger) *LineSender {
	if loc == nil {
		loc = time.UTC
	}
	return &LineSender{api: api, recipients: recipients, log: log.With("component", "line_sender"), loc: loc}
}

// Send pushes n to the user's linked LINE account. The retry key is derived
// from the notification, so LINE drops a repeated push of the same reminder.
func (s *LineSender) Send(ctx context.Context, n models.Notification) error {
	to, err := s.recipients.LineUserID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve line recipient for %s: %w", n.UserID, err)
	}

	req := &messaging_api.PushMessageRequest{
		To: to,
		Messages: []messaging_api.MessageInterface{
			&messaging_api.TextMessage{Text: s.text(n)},
		},
	}
	if _, err := s.api.PushMessage(req, retryKey(n)); err != nil {
		return fmt.Errorf("line push: %w", err)
	}

	s.log.InfoContext(ctx, "reminder pushed to line", "user_id", n.UserID, "item_id", n.ItemID)
	return nil
}

func (s *LineSender) text(n models.Notification) string {
	return fmt.Sprintf("⏰ %s\n%s", n.Title, n.TriggerAt.In(s.loc).Format("2006-01-02 15:04"))
}

func retryKey(n models.Notification) string {
	name := n.UserID + "/" + n.ItemID + "/" + strconv.FormatInt(n.TriggerAt.Unix(), 10)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
