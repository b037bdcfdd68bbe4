package web_test

import (
	"context"
	"flag"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and HTTP helpers for the web service end-to-end tests.
 */

const (
	testImageName = "tenantry-web-test:latest"

	ownerEmail    = "owner@example.com"
	ownerPassword = "Owner123!"
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	accountPath   = "acme"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building Web Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Web Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/web/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupWebContainer starts the web service, seeds it and returns the base URL.
func setupWebContainer(t *testing.T) (string, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"DATABASE_FILE":  "/data/tenantry.db",
			"PEPPER_FILE":    "/data/pepper",
			"SESSION_SECRET": "e2e-session-secret-0123456789abcdef",
			"BASE_DOMAIN":    "tenantry.test",
			"ENV":            "test",
			"LOG_LEVEL":      "debug",
			"LOG_FORMAT":     "json",
			// Tests sign in repeatedly from the same address
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_LENIENT_REQUESTS":  "1000",
			"RATELIMIT_LENIENT_BURST":     "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	code, out, err := container.Exec(ctx, []string{
		"tenantry-web", "seed",
		"--admin-email", adminEmail, "--admin-password", adminPassword,
		"--owner-email", ownerEmail, "--owner-password", ownerPassword,
		"--account-path", accountPath, "--invoices", "3",
	})
	if err != nil || code != 0 {
		body, _ := io.ReadAll(out)
		cleanup()
		t.Fatalf("seed failed (exit %d): %v\n%s", code, err, body)
	}

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port()), cleanup
}

// browser is an HTTP client with a cookie jar that does not follow redirects.
type browser struct {
	t       *testing.T
	baseURL string
	client  *http.Client
	token   string
}

var tokenField = regexp.MustCompile(`name="authenticity_token" value="([^"]+)"`)

func newBrowser(t *testing.T, baseURL string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:       t,
		baseURL: baseURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// get returns the status, Location header and body of GET path. The
// page's authenticity token is kept for the next post.
func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.baseURL + path)
	require.NoError(b.t, err)
	status, location, body := read(b.t, resp)
	if m := tokenField.FindStringSubmatch(body); m != nil {
		b.token = html.UnescapeString(m[1])
	}
	return status, location, body
}

// post submits form to path with the last authenticity token seen.
func (b *browser) post(path string, form url.Values) (int, string, string) {
	b.t.Helper()
	form.Set("authenticity_token", b.token)
	resp, err := b.client.PostForm(b.baseURL+path, form)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func (b *browser) cookie(name string) string {
	u, err := url.Parse(b.baseURL)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// signIn loads the sign in form and posts credentials, returning the
// redirect target.
func (b *browser) signIn(email, password string) string {
	b.t.Helper()
	status, _, _ := b.get("/users/sign_in")
	require.Equal(b.t, http.StatusOK, status)
	require.NotEmpty(b.t, b.cookie("csrf_token"))
	require.NotEmpty(b.t, b.token)

	status, location, _ := b.post("/users/sign_in", url.Values{
		"user[email]":    {email},
		"user[password]": {password},
	})
	require.Equal(b.t, http.StatusFound, status)
	require.True(b.t, strings.HasPrefix(location, "/users/"), "redirected to %q", location)
	return location
}

func read(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}
