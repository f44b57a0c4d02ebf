package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"github.com/umalmyha/contacts-api/internal/config"
	"github.com/umalmyha/contacts-api/internal/events"
	"github.com/umalmyha/contacts-api/internal/model"
	"github.com/umalmyha/contacts-api/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// canonicalID resolves id the way mongo driver does, any hex case is accepted
func canonicalID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", fmt.Errorf("failed to cast contact id %q - %w", id, err)
	}
	return oid.Hex(), nil
}

type memoryContactRepository struct {
	mu       sync.Mutex
	seq      int
	contacts map[string]model.Contact
	order    []string
}

func newMemoryContactRepository() *memoryContactRepository {
	return &memoryContactRepository{contacts: make(map[string]model.Contact)}
}

func (r *memoryContactRepository) FindAll(context.Context) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := make([]*model.Contact, 0, len(r.order))
	for _, id := range r.order {
		c := r.contacts[id]
		contacts = append(contacts, &c)
	}
	return contacts, nil
}

func (r *memoryContactRepository) FindByID(_ context.Context, id string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := canonicalID(id)
	if err != nil {
		return nil, nil
	}

	c, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memoryContactRepository) Create(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	c.ID = fmt.Sprintf("fa%022x", r.seq)
	r.contacts[c.ID] = *c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *memoryContactRepository) Update(_ context.Context, c *model.Contact) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := canonicalID(c.ID)
	if err != nil {
		return nil, err
	}

	if _, ok := r.contacts[id]; !ok {
		return nil, nil
	}
	updated := *c
	updated.ID = id
	r.contacts[id] = updated
	return &updated, nil
}

func (r *memoryContactRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := canonicalID(id)
	if err != nil {
		return false, err
	}

	if _, ok := r.contacts[id]; !ok {
		return false, nil
	}
	delete(r.contacts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context, *readpref.ReadPref) error {
	return p.err
}

type routerTestSuite struct {
	suite.Suite
	app       *echo.Echo
	staticDir string
	pinger    *stubPinger
	logHook   *test.Hook
}

func (s *routerTestSuite) SetupTest() {
	s.staticDir = s.T().TempDir()
	err := os.WriteFile(filepath.Join(s.staticDir, "index.html"), []byte("<h1>Contacts</h1>"), 0o600)
	s.Require().NoError(err, "failed to write index.html")
	err = os.WriteFile(filepath.Join(s.staticDir, "app.js"), []byte("console.log('contacts')"), 0o600)
	s.Require().NoError(err, "failed to write app.js")

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s.logHook = hook
	s.pinger = &stubPinger{}

	contactSvc := service.NewContactService(newMemoryContactRepository(), events.NewNoopPublisher())
	s.app, err = Router(config.HTTPCfg{
		Port:             3000,
		StaticDir:        s.staticDir,
		CorsAllowOrigins: []string{"*"},
	}, logger, contactSvc, s.pinger)
	s.Require().NoError(err, "failed to build router")
}

func (s *routerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	return rec
}

func (s *routerTestSuite) list() []*model.Contact {
	rec := s.do(http.MethodGet, "/contacts", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var contacts []*model.Contact
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &contacts), "list must be json array")
	return contacts
}

func (s *routerTestSuite) TestContactLifecycle() {
	var created model.Contact

	s.T().Log("empty collection is listed as empty array")
	{
		rec := s.do(http.MethodGet, "/contacts", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Equal("[]", strings.TrimSpace(rec.Body.String()))
	}

	s.T().Log("create contact")
	{
		rec := s.do(http.MethodPost, "/contacts", `{"firstName":"Jane","lastName":"Doe","email":"jane@x.io","phone":"555-1"}`)
		s.Require().Equal(http.StatusCreated, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
		s.Require().NotEmpty(created.ID, "created contact must have id")
		s.Require().NotEmpty(rec.Header().Get(echo.HeaderXRequestID), "request id must be assigned")
	}

	s.T().Log("created contact is listed with the same fields")
	{
		contacts := s.list()
		s.Require().Len(contacts, 1)
		s.Require().Equal(&created, contacts[0])
	}

	s.T().Log("partial update clears omitted fields")
	{
		rec := s.do(http.MethodPut, "/contacts/"+created.ID, `{"phone":"555-2"}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"","lastName":"","email":"","phone":"555-2"}`, rec.Body.String())

		rec = s.do(http.MethodGet, "/contacts/"+created.ID, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"","lastName":"","email":"","phone":"555-2"}`, rec.Body.String())
	}

	s.T().Log("update of missing contact is not found and creates nothing")
	{
		rec := s.do(http.MethodPut, "/contacts/65f1a2b3c4d5e6f708192aff", `{"firstName":"Ghost"}`)
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Require().Equal("Contact not found", rec.Body.String())
		s.Require().Len(s.list(), 1, "update must not create contacts")
	}

	s.T().Log("delete contact")
	{
		rec := s.do(http.MethodDelete, "/contacts/"+created.ID, "")
		s.Require().Equal(http.StatusNoContent, rec.Code)
		s.Require().Empty(rec.Body.String())
		s.Require().Empty(s.list(), "deleted contact is still listed")
	}

	s.T().Log("delete of missing contact is still successful")
	{
		rec := s.do(http.MethodDelete, "/contacts/"+created.ID, "")
		s.Require().Equal(http.StatusNoContent, rec.Code)
	}
}

func (s *routerTestSuite) TestMalformedRequests() {
	s.T().Log("unreadable body on create")
	{
		rec := s.do(http.MethodPost, "/contacts", `{"firstName":`)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Require().Equal("Error creating contact", rec.Body.String())
		s.Require().Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
	}

	s.T().Log("object field on create")
	{
		rec := s.do(http.MethodPost, "/contacts", `{"firstName":{"given":"Jane"}}`)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Require().Equal("Error creating contact", rec.Body.String())
		s.Require().Empty(s.list(), "rejected contact must not be stored")
	}

	s.T().Log("malformed id on read")
	{
		rec := s.do(http.MethodGet, "/contacts/not-an-id", "")
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Require().Equal("Contact not found", rec.Body.String())
	}

	s.T().Log("malformed id on update")
	{
		rec := s.do(http.MethodPut, "/contacts/not-an-id", `{"firstName":"Ghost"}`)
		s.Require().Equal(http.StatusInternalServerError, rec.Code)
		s.Require().Equal("Error updating contact", rec.Body.String())
	}

	s.T().Log("malformed id on delete")
	{
		rec := s.do(http.MethodDelete, "/contacts/not-an-id", "")
		s.Require().Equal(http.StatusInternalServerError, rec.Code)
		s.Require().Equal("Error deleting contact", rec.Body.String())
	}
}

func (s *routerTestSuite) TestScalarFields() {
	var created model.Contact

	s.T().Log("numbers and booleans are stored as strings on create")
	{
		rec := s.do(http.MethodPost, "/contacts", `{"firstName":"Jane","lastName":false,"email":null,"phone":5551234}`)
		s.Require().Equal(http.StatusCreated, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
		s.Require().Equal(model.Contact{ID: created.ID, FirstName: "Jane", LastName: "false", Phone: "5551234"}, created)
	}

	s.T().Log("numbers and booleans are stored as strings on update")
	{
		rec := s.do(http.MethodPut, "/contacts/"+created.ID, `{"firstName":true,"phone":42.5}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"true","lastName":"","email":"","phone":"42.5"}`, rec.Body.String())
	}

	s.T().Log("array field on update is server error and keeps contact")
	{
		rec := s.do(http.MethodPut, "/contacts/"+created.ID, `{"phone":["1","2"]}`)
		s.Require().Equal(http.StatusInternalServerError, rec.Code)
		s.Require().Equal("Error updating contact", rec.Body.String())

		rec = s.do(http.MethodGet, "/contacts/"+created.ID, "")
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"true","lastName":"","email":"","phone":"42.5"}`, rec.Body.String())
	}
}

func (s *routerTestSuite) TestUppercaseID() {
	var created model.Contact
	rec := s.do(http.MethodPost, "/contacts", `{"firstName":"Jane"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	upperID := strings.ToUpper(created.ID)
	s.Require().NotEqual(created.ID, upperID, "generated id must contain hex letters")

	s.T().Log("existing contact is found by uppercase id")
	{
		rec := s.do(http.MethodGet, "/contacts/"+upperID, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"Jane","lastName":"","email":"","phone":""}`, rec.Body.String())
	}

	s.T().Log("existing contact is updated by uppercase id")
	{
		rec := s.do(http.MethodPut, "/contacts/"+upperID, `{"firstName":"Janet"}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"id":"`+created.ID+`","firstName":"Janet","lastName":"","email":"","phone":""}`, rec.Body.String())
	}

	s.T().Log("existing contact is deleted by uppercase id")
	{
		rec := s.do(http.MethodDelete, "/contacts/"+upperID, "")
		s.Require().Equal(http.StatusNoContent, rec.Code)
		s.Require().Empty(s.list(), "deleted contact is still listed")
	}
}

func (s *routerTestSuite) TestStaticFiles() {
	s.T().Log("root serves index.html")
	{
		rec := s.do(http.MethodGet, "/", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Equal("<h1>Contacts</h1>", rec.Body.String())
	}

	s.T().Log("assets are served from static directory")
	{
		rec := s.do(http.MethodGet, "/app.js", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Equal("console.log('contacts')", rec.Body.String())
	}

	s.T().Log("missing asset is not found")
	{
		rec := s.do(http.MethodGet, "/missing.css", "")
		s.Require().Equal(http.StatusNotFound, rec.Code)
	}
}

func (s *routerTestSuite) TestAPIDocs() {
	s.T().Log("docs root redirects to ui")
	{
		rec := s.do(http.MethodGet, "/api-docs", "")
		s.Require().Equal(http.StatusMovedPermanently, rec.Code)
		s.Require().Equal("/api-docs/index.html", rec.Header().Get(echo.HeaderLocation))
	}

	s.T().Log("ui is served")
	{
		rec := s.do(http.MethodGet, "/api-docs/index.html", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Contains(rec.Body.String(), "swagger-ui")
	}

	s.T().Log("document is served")
	{
		rec := s.do(http.MethodGet, "/api-docs/doc.json", "")
		s.Require().Equal(http.StatusOK, rec.Code)

		var doc map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc), "document must be valid json")
		s.Require().Equal("3.0.3", doc["openapi"])
	}
}

func (s *routerTestSuite) TestHealth() {
	s.T().Log("reachable storage")
	{
		rec := s.do(http.MethodGet, "/healthz", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().JSONEq(`{"status":"ok"}`, rec.Body.String())
	}

	s.T().Log("unreachable storage")
	{
		s.pinger.err = errors.New("server selection timeout")
		rec := s.do(http.MethodGet, "/healthz", "")
		s.Require().Equal(http.StatusServiceUnavailable, rec.Code)
		s.Require().JSONEq(`{"status":"unavailable"}`, rec.Body.String())
	}
}

func (s *routerTestSuite) TestCORS() {
	req := httptest.NewRequest(http.MethodOptions, "/contacts", http.NoBody)
	req.Header.Set(echo.HeaderOrigin, "https://front.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().Equal("*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(routerTestSuite))
}
