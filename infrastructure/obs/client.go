package obs

import (
	"fmt"

	"github.com/andreykaipov/goobs"
	"github.com/andreykaipov/goobs/api/requests/config"
)

// API is the subset of obs-websocket requests the host needs.
// This allows mocking the websocket connection in tests
type API interface {
	ReplayBufferActive() (bool, error)
	ProfileParameter(category, name string) (string, error)
	SaveReplayBuffer() error
	LastReplayPath() (string, error)

	// Listen delivers events until the connection closes
	Listen(fn func(event any))
	Disconnect() error
}

// WebsocketAPI is the production implementation using goobs
type WebsocketAPI struct {
	client *goobs.Client
}

// Dial connects to obs-websocket at address, e.g. "localhost:4455"
func Dial(address, password string) (*WebsocketAPI, error) {
	var opts []goobs.Option
	if password != "" {
		opts = append(opts, goobs.WithPassword(password))
	}

	client, err := goobs.New(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to obs-websocket at %s: %w", address, err)
	}
	return &WebsocketAPI{client: client}, nil
}

// ReplayBufferActive reports whether the replay buffer output is running
func (a *WebsocketAPI) ReplayBufferActive() (bool, error) {
	resp, err := a.client.Outputs.GetReplayBufferStatus()
	if err != nil {
		return false, err
	}
	return resp.OutputActive, nil
}

// ProfileParameter returns a parameter of the current profile, falling back
// to its default value when unset
func (a *WebsocketAPI) ProfileParameter(category, name string) (string, error) {
	resp, err := a.client.Config.GetProfileParameter(
		config.NewGetProfileParameterParams().
			WithParameterCategory(category).
			WithParameterName(name),
	)
	if err != nil {
		return "", err
	}
	if resp.ParameterValue != "" {
		return resp.ParameterValue, nil
	}
	return resp.DefaultParameterValue, nil
}

// SaveReplayBuffer asks OBS to write the replay buffer to disk
func (a *WebsocketAPI) SaveReplayBuffer() error {
	_, err := a.client.Outputs.SaveReplayBuffer()
	return err
}

// LastReplayPath returns the file written by the most recent replay save
func (a *WebsocketAPI) LastReplayPath() (string, error) {
	resp, err := a.client.Outputs.GetLastReplayBufferReplay()
	if err != nil {
		return "", err
	}
	return resp.SavedReplayPath, nil
}

// Listen implements API
func (a *WebsocketAPI) Listen(fn func(event any)) {
	a.client.Listen(fn)
}

// Disconnect implements API
func (a *WebsocketAPI) Disconnect() error {
	return a.client.Disconnect()
}

// Ensure WebsocketAPI implements API
var _ API = (*WebsocketAPI)(nil)
