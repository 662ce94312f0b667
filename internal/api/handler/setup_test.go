package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/edvin/provisioning/internal/api/middleware"
	"github.com/edvin/provisioning/internal/centralserver"
	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

const testBase = "/api/v1/provisioning"

// recordedRequest is what a fake central server saw.
type recordedRequest struct {
	Method string
	Action string
	ID     string
	Body   string
	User   string
	XFF    string
}

// fakeCentralServer is an httptest server standing in for one central server.
type fakeCentralServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeCentralServer(t *testing.T, status int, body string) *fakeCentralServer {
	t.Helper()
	f := &fakeCentralServer{status: status, body: body}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		user, _, _ := r.BasicAuth()
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Action: r.URL.Query().Get("action"),
			ID:     r.URL.Query().Get("id"),
			Body:   string(data),
			User:   user,
			XFF:    r.Header.Get("X-Forwarded-For"),
		})
		status, body := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCentralServer) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// testGateway wires real services over mocked shard databases and fake
// central servers.
type testGateway struct {
	handler  http.Handler
	dbs      map[int]*handlerMockDB
	servers  map[int]*fakeCentralServer
	alertDir string
}

type testUser struct {
	name  string
	rules []model.Permission
}

var allowAll = []model.Permission{{
	Pattern: regexp.MustCompile(`^.*$`),
	Methods: map[string]bool{"GET": true, "PUT": true, "DELETE": true, "POST": true},
}}

func newTestGateway(t *testing.T, limit int, servers ...*fakeCentralServer) *testGateway {
	t.Helper()
	return newTestGatewayWithUsers(t, limit, []testUser{{name: "alice", rules: allowAll}}, servers...)
}

func newTestGatewayWithUsers(t *testing.T, limit int, users []testUser, servers ...*fakeCentralServer) *testGateway {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	modelUsers := make([]model.User, 0, len(users))
	for _, u := range users {
		modelUsers = append(modelUsers, model.User{
			Credential:  model.Credential{Username: u.name, PasswordHash: string(hash)},
			Permissions: u.rules,
		})
	}
	auth, err := core.NewAuthService(modelUsers)
	require.NoError(t, err)

	gw := &testGateway{dbs: map[int]*handlerMockDB{}, servers: map[int]*fakeCentralServer{}}
	shards := make([]model.Shard, 0, len(servers))
	dbs := make(map[int]core.DB, len(servers))
	for i, f := range servers {
		id := i + 1
		shards = append(shards, model.Shard{
			ID:  id,
			URL: f.srv.URL + "/zabbix/provisioning.php",
			Limits: map[model.ObjectType]int{
				model.ObjectTypeTLD:       limit,
				model.ObjectTypeRegistrar: limit,
				model.ObjectTypeProbeNode: limit,
			},
		})
		m := &handlerMockDB{}
		dbs[id] = m
		gw.dbs[id] = m
		gw.servers[id] = f
	}

	set, err := core.NewShardSet(shards, dbs, map[string]string{model.GroupTLD: "TLDs", model.GroupProbe: "Probes"})
	require.NoError(t, err)

	gw.alertDir = t.TempDir()
	alerts := core.NewAlertService(gw.alertDir, map[string]bool{"downtime": true})
	prov := NewProvisioning(testBase, auth, set,
		core.NewLocatorService(set),
		core.NewPlacementService(set),
		centralserver.NewClient(shards, time.Second, nil),
		NewAlert(alerts),
	)
	gw.handler = mw.BasicAuth(auth)(prov)
	return gw
}

func (gw *testGateway) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, testBase+path, r)
	req.SetBasicAuth("alice", "s3cret")
	req.RemoteAddr = "192.0.2.44:51234"
	rec := httptest.NewRecorder()
	gw.handler.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses an envelope response body.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newGatewayRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, testBase+path, nil)
	req.SetBasicAuth("alice", "s3cret")
	req.RemoteAddr = "192.0.2.44:51234"
	return req
}

func serve(gw *testGateway, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	gw.handler.ServeHTTP(rec, req)
	return rec
}
