package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// errStatus is returned when the server answers with an unexpected status.
var errStatus = errors.New("unexpected status")

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1/users",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChannelProfile struct {
	ID                       string `json:"id"`
	Username                 string `json:"username"`
	SubscribersCount         int64  `json:"subscribersCount"`
	ChannelSubscribedToCount int64  `json:"channelSubscribedToCount"`
	IsSubscribed             bool   `json:"isSubscribed"`
}

type WatchedVideo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Owner *struct {
		Username string `json:"username"`
	} `json:"owner"`
}

// placeholderPNG is a 1x1 transparent PNG used for generated avatars.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// RegisterUser creates a new account with a generated avatar
func (c *APIClient) RegisterUser(baseName, password string) (*User, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	fields := map[string]string{
		"fullName": baseName,
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	}
	files := map[string][]byte{"avatar": placeholderPNG}

	resp, err := c.postMultipart("/register", fields, files)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	var user User
	if err := decode(resp, http.StatusCreated, &user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

func (c *APIClient) Login(username, password string) (*LoginResponse, error) {
	resp, err := c.send(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResponse
	if err := decode(resp, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Refresh(refreshToken string) (*TokenPair, error) {
	resp, err := c.send(http.MethodPost, "/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	var pair TokenPair
	if err := decode(resp, http.StatusOK, &pair); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &pair, nil
}

func (c *APIClient) Logout(token string) error {
	resp, err := c.send(http.MethodPost, "/logout", nil, token)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, http.StatusOK, nil)
}

func (c *APIClient) CurrentUser(token string) (*User, error) {
	resp, err := c.send(http.MethodGet, "/current-user", nil, token)
	if err != nil {
		return nil, fmt.Errorf("current user request failed: %w", err)
	}
	defer resp.Body.Close()

	var user User
	if err := decode(resp, http.StatusOK, &user); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &user, nil
}

func (c *APIClient) UpdateAccount(token, fullName, email string) (*User, error) {
	resp, err := c.send(http.MethodPatch, "/update-account", map[string]string{
		"fullName": fullName,
		"email":    email,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("update account request failed: %w", err)
	}
	defer resp.Body.Close()

	var user User
	if err := decode(resp, http.StatusOK, &user); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return &user, nil
}

// ChannelProfile fetches a channel page; token may be empty for anonymous
// viewers.
func (c *APIClient) ChannelProfile(username, token string) (*ChannelProfile, error) {
	resp, err := c.send(http.MethodGet, "/c/"+username, nil, token)
	if err != nil {
		return nil, fmt.Errorf("channel request failed: %w", err)
	}
	defer resp.Body.Close()

	var profile ChannelProfile
	if err := decode(resp, http.StatusOK, &profile); err != nil {
		return nil, fmt.Errorf("channel: %w", err)
	}
	return &profile, nil
}

func (c *APIClient) WatchHistory(token string) ([]WatchedVideo, error) {
	resp, err := c.send(http.MethodGet, "/history", nil, token)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	var history []WatchedVideo
	if err := decode(resp, http.StatusOK, &history); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return history, nil
}

// HTTP helpers

func decode(resp *http.Response, want int, v interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w %d: %s", errStatus, resp.StatusCode, string(body))
	}
	if v == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

func (c *APIClient) send(method, path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *APIClient) postMultipart(path string, fields map[string]string, files map[string][]byte) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".png")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.httpClient.Do(req)
}
