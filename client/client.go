package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"whisper-relay/common"
	"whisper-relay/configs"
)

var (
	ErrNoBundle  = errors.New("no key material for user")
	ErrExhausted = errors.New("one-time keys depleted")
)

// Client talks to a relay server over its HTTP surface and, once connected,
// over a persistent websocket channel.
type Client struct {
	baseURL string
	http    *http.Client

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// Connect opens the relay channel, registers userID and starts the receive
// pump. Incoming envelopes arrive on the returned channel, which is closed
// when the connection drops.
func (c *Client) Connect(userID string) (<-chan common.Envelope, error) {
	wsURL, err := websocketURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	c.conn = conn

	if err := c.writeEnvelope(&common.Envelope{Type: common.MsgTypeRegister, UserID: userID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	received := make(chan common.Envelope, 16)
	go c.readPump(received)
	return received, nil
}

func (c *Client) readPump(received chan<- common.Envelope) {
	defer close(received)
	for {
		var env common.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		received <- env
	}
}

// Signal pushes a signaling payload to another user over the live channel.
// Delivery is best-effort: the relay drops it if the recipient is offline.
func (c *Client) Signal(to string, payload json.RawMessage) error {
	return c.writeEnvelope(&common.Envelope{Type: common.MsgTypeSignal, To: to, Signal: payload})
}

func (c *Client) writeEnvelope(env *common.Envelope) error {
	if c.conn == nil {
		return errors.New("not connected")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(env)
}

// Send submits a message for a user who may be offline; the relay queues it
// in their mailbox if they have no live channel.
func (c *Client) Send(to, from string, wireMessage json.RawMessage) error {
	return c.post(configs.SendPath, &common.SendRequest{To: to, From: from, WireMessage: wireMessage})
}

// UploadKeys publishes a prekey bundle, replacing any previous one.
func (c *Client) UploadKeys(req *common.UploadKeysRequest) error {
	return c.post(configs.UploadKeysPath, req)
}

// FetchKeys retrieves userID's public bundle with one one-time key consumed.
func (c *Client) FetchKeys(userID string) (*common.FetchKeysResponse, error) {
	resp, err := c.http.Get(c.baseURL + "/keys/" + url.PathEscape(userID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNoBundle
	case http.StatusServiceUnavailable:
		return nil, ErrExhausted
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay get /keys/%s: %s", userID, resp.Status)
	}

	var out common.FetchKeysResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) post(path string, in any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	return nil
}

func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = configs.WebSocketPath
	return u.String(), nil
}
