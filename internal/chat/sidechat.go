package chat

import (
	"context"
	"strings"
	"time"

	"github.com/agendazap/agendazap/pkg/logging"
)

// SideChat owns the freeform side-conversation mode. While a session is
// active every message from that requester lands here instead of the state
// machine, and no automatic reply is produced; a human answers out-of-band.
type SideChat struct {
	store  StateStore
	logger *logging.Logger
	now    func() time.Time
}

// NewSideChat creates a side-conversation manager over the shared state store.
func NewSideChat(store StateStore, logger *logging.Logger) *SideChat {
	if logger == nil {
		logger = logging.Default()
	}
	return &SideChat{store: store, logger: logger, now: time.Now}
}

// Start opens a session for the requester and returns the welcome message.
func (s *SideChat) Start(ctx context.Context, requesterID string) (string, error) {
	sess := &SideSession{LastContactAt: s.now()}
	if err := s.store.SaveSession(ctx, requesterID, sess); err != nil {
		return "", err
	}
	s.logger.Info("chat: side conversation started", "requester", requesterID)
	return msgSideWelcome, nil
}

// Handle processes a message while a session may be active. When handled is
// false the caller falls through to normal routing. The exit keyword tears the
// session down; anything else refreshes the idle clock and replies nothing.
func (s *SideChat) Handle(ctx context.Context, requesterID, text string) (reply string, handled bool, err error) {
	sess, err := s.store.Session(ctx, requesterID)
	if err != nil {
		return "", false, err
	}
	if sess == nil {
		return "", false, nil
	}

	if strings.EqualFold(strings.TrimSpace(text), "sair") {
		if err := s.store.ClearSession(ctx, requesterID); err != nil {
			return "", true, err
		}
		s.logger.Info("chat: side conversation ended", "requester", requesterID)
		return msgSideExit + "\n\n" + MenuText, true, nil
	}

	sess.LastContactAt = s.now()
	if err := s.store.SaveSession(ctx, requesterID, sess); err != nil {
		return "", true, err
	}
	return "", true, nil
}
