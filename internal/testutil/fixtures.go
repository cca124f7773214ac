package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username     string
	email        string
	fullName     string
	password     string
	avatar       string
	coverImage   string
	watchHistory []uuid.UUID
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "user_" + suffix,
		email:    "user_" + suffix + "@example.com",
		fullName: "Test User " + suffix,
		password: "testpassword123",
		avatar:   "https://media.test/avatars/" + suffix + ".png",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.fullName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithCoverImage(url string) *UserBuilder {
	b.coverImage = url
	return b
}

// WithWatchHistory sets the ordered list of watched video ids
func (b *UserBuilder) WithWatchHistory(ids ...uuid.UUID) *UserBuilder {
	b.watchHistory = ids
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// CheckPassword reads the cost from the hash, so MinCost is fine here.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Username:      domain.NormalizeUsername(b.username),
		Email:         domain.NormalizeEmail(b.email),
		FullName:      b.fullName,
		PasswordHash:  string(hashedPassword),
		AvatarURL:     b.avatar,
		CoverImageURL: b.coverImage,
		WatchHistory:  datatypes.JSONSlice[uuid.UUID](b.watchHistory),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if b.avatar != "" {
		user.AvatarPublicID = "avatars/" + user.ID.String()
	}
	if b.coverImage != "" {
		user.CoverImagePublicID = "covers/" + user.ID.String()
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// Session is what a successful login hands back
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// BuildAndLogin creates the user in the database and logs in over HTTP
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) *Session {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	resp := PostJSON(t, ts.APIURL("/login"), map[string]string{
		"username": user.Username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login failed with %d: %s", resp.StatusCode, body)
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	DecodeEnvelope(t, resp, &data)

	return &Session{User: user, AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}
}

// VideoBuilder creates catalogue videos for watch-history tests
type VideoBuilder struct {
	owner    *domain.User
	title    string
	duration float64
}

func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{
		title:    "Video " + uuid.New().String()[:8],
		duration: 60,
	}
}

func (b *VideoBuilder) WithOwner(user *domain.User) *VideoBuilder {
	b.owner = user
	return b
}

func (b *VideoBuilder) WithTitle(title string) *VideoBuilder {
	b.title = title
	return b
}

// Build creates the video, and an owner if none was set
func (b *VideoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Video {
	t.Helper()

	if b.owner == nil {
		b.owner, _ = NewUserBuilder().Build(t, db)
	}

	video := &domain.Video{
		ID:          uuid.New(),
		OwnerID:     b.owner.ID,
		VideoFile:   "https://media.test/videos/" + b.title + ".mp4",
		Thumbnail:   "https://media.test/thumbs/" + b.title + ".png",
		Title:       b.title,
		Description: "description of " + b.title,
		Duration:    b.duration,
		IsPublished: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	return video
}

// Subscribe records that subscriber follows channel
func Subscribe(t *testing.T, db *gorm.DB, subscriber, channel *domain.User) {
	t.Helper()

	sub := &domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

// PostJSON sends body as JSON, with a bearer token when one is given
func PostJSON(t *testing.T, url string, body interface{}, token string) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, body, token)
}

func DoJSON(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// MultipartRequest builds a multipart body from text fields and files.
// files maps form field to a file name; each file gets small image content.
func MultipartRequest(t *testing.T, method, url string, fields, files map[string]string, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for field, name := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", field, err)
		}
		part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// TempImage writes an image into a per-test directory and returns its path
func TempImage(t *testing.T, name string) string {
	t.Helper()

	path, err := WriteImage(t.TempDir(), name)
	if err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// FileExists reports whether path is still on disk
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirEntries lists the names in dir, failing the test on error
func DirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	return names
}
