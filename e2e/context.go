// Package e2e drives a running server through Gherkin scenarios.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext holds per-scenario state: who is acting, the last response
// and ids captured along the way.
type TestContext struct {
	BaseURL    string
	SigningKey string
	Issuer     string
	Audience   string
	Client     *http.Client

	users    map[string]user
	actor    string
	status   int
	body     []byte
	captured map[string]string
}

type user struct {
	id    string
	roles []string
}

// NewTestContext reads the target from E2E_BASE_URL and the token settings
// from the same variables the server uses.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("E2E_BASE_URL", "http://localhost:8080"),
		SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Issuer:     envOr("JWT_ISSUER", "confpaper"),
		Audience:   envOr("JWT_AUDIENCE", "confpaper-api"),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state.
func (c *TestContext) Reset() {
	c.users = map[string]user{}
	c.actor = ""
	c.status = 0
	c.body = nil
	c.captured = map[string]string{}
}

// AddUser registers a named user holding roles.
func (c *TestContext) AddUser(name string, roles ...string) {
	c.users[name] = user{id: uuid.NewString(), roles: roles}
}

func (c *TestContext) UserID(name string) string { return c.users[name].id }

func (c *TestContext) ActAs(name string) error {
	if _, ok := c.users[name]; !ok {
		return fmt.Errorf("unknown user %q", name)
	}
	c.actor = name
	return nil
}

func (c *TestContext) Capture(key, value string) { c.captured[key] = value }

func (c *TestContext) Captured(key string) string { return c.captured[key] }

func (c *TestContext) Status() int { return c.status }

// ResponseField reads a top-level field of the last JSON response.
func (c *TestContext) ResponseField(field string) (any, error) {
	var doc map[string]any
	if err := json.Unmarshal(c.body, &doc); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response %s", field, c.body)
	}
	return v, nil
}

func (c *TestContext) Body() []byte { return c.body }

func (c *TestContext) JSON(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	return c.do(method, path, reader, "application/json")
}

func (c *TestContext) Upload(path, filename string, content []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(http.MethodPost, path, &buf, mw.FormDataContentType())
}

func (c *TestContext) do(method, path string, body io.Reader, contentType string) error {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.actor != "" {
		token, err := c.token(c.users[c.actor])
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.status = resp.StatusCode
	c.body, err = io.ReadAll(resp.Body)
	return err
}

func (c *TestContext) token(u user) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.id,
		"roles": u.roles,
		"iss":   c.Issuer,
		"aud":   c.Audience,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"jti":   uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.SigningKey))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
