package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// SessionConfig configures Open.
type SessionConfig struct {
	Username  string
	Password  string
	StatePath string

	// Client overrides the API client, mainly for tests. Nil means a
	// default client against the real API.
	Client *Client
}

// Session is an authenticated connection to one Instagram account with its
// state persisted at StatePath. The caller owns the lifecycle: Open it, use
// it, Close it. Nothing here is process-global.
type Session struct {
	client    *Client
	account   *Account
	statePath string
	username  string
}

// Open resumes a saved session when the state file is present and still
// valid, and performs a fresh login otherwise. A state file that fails to
// load or verify is deleted before the fresh login, matching the recovery
// behavior users expect after an expiry: next run just works.
func Open(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("instagram: username and password are required")
	}

	client := cfg.Client
	if client == nil {
		client = NewClient()
	}

	s := &Session{client: client, statePath: cfg.StatePath, username: cfg.Username}

	if st, err := LoadState(cfg.StatePath); err == nil && st.Username == cfg.Username {
		client.RestoreState(st)
		account, verr := client.CurrentUser(ctx)
		if verr == nil {
			slog.Debug("resumed instagram session", "username", account.Username)
			s.account = account
			return s, nil
		}
		slog.Warn("saved session invalid, logging in fresh", "error", verr)
		if rerr := RemoveState(cfg.StatePath); rerr != nil {
			return nil, rerr
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		// Unreadable state files are discarded the same way.
		if rerr := RemoveState(cfg.StatePath); rerr != nil {
			return nil, rerr
		}
	}

	account, err := client.Login(ctx, cfg.Username, cfg.Password, deviceID(cfg.Username))
	if err != nil {
		return nil, err
	}
	if err := SaveState(cfg.StatePath, client.ExportState(cfg.Username)); err != nil {
		return nil, err
	}
	slog.Debug("fresh instagram login", "username", account.Username)

	s.account = account
	return s, nil
}

// deviceID derives a stable device identity from the username, so fresh
// logins on the same account always present the same device instead of
// looking like a new phone each run.
func deviceID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("instagram-device:"+username)).String()
}

// Account returns the logged-in account.
func (s *Session) Account() *Account { return s.account }

// Client exposes the authenticated API client.
func (s *Session) Client() *Client { return s.client }

// Close releases the session's resources. The state file is left in place
// so the next Open can resume.
func (s *Session) Close() error {
	s.account = nil
	return nil
}
