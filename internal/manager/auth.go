package manager

import "context"

// SetAuthToken persists a Thunderstore API token for the configured host
// and applies it to the live client so subsequent authenticated calls
// (legacy-profile create, usermedia upload, submission) carry it.
func (m *Manager) SetAuthToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SaveAuth(ctx, m.client.Host, token); err != nil {
		return err
	}
	m.client.Token = token
	return nil
}

// loadAuth restores a previously-saved token for the client's host, called
// once during Open. A missing token is not an error; the anonymous
// endpoints keep working without one.
func (m *Manager) loadAuth(ctx context.Context) error {
	token, ok, err := m.store.LoadAuth(ctx, m.client.Host)
	if err != nil {
		return err
	}
	if ok {
		m.client.Token = token
	}
	return nil
}
