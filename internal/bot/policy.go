package bot

import (
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/axz356574-a11y/Confession/internal/models"
)

// MinObservation is how long a user must have been on record before the
// timezone command will analyze them.
const MinObservation = 48 * time.Hour

var errNoTarget = errors.New("no target user")

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// observedFor reports how long the user has been on record, measured from
// the earliest retained sample. The durable record carries no join date, so
// the oldest sample is the first moment we can vouch for.
func observedFor(rec models.ActivityRecord, now time.Time) time.Duration {
	oldest, ok := rec.OldestSample()
	if !ok {
		return 0
	}
	d := now.Sub(time.Unix(oldest, 0))
	if d < 0 {
		return 0
	}
	return d
}

// targetUserID resolves the subject of an admin command: an explicit numeric
// ID argument wins, otherwise the author of the replied-to message.
func targetUserID(args string, replyTo *tgbotapi.Message) (int64, error) {
	if args != "" {
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return 0, errNoTarget
		}
		return id, nil
	}
	if replyTo != nil && replyTo.From != nil {
		return replyTo.From.ID, nil
	}
	return 0, errNoTarget
}
