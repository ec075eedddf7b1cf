package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/dbhub/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

const defaultPassword = "correct horse battery"

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authHeader   string
	databases    map[string]int64
	lastBodies   []string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		databases: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetData()
	})

	// Background steps
	sc.Step(`^a dbhub server is running$`, s.aServerIsRunning)
	sc.Step(`^a user "([^"]*)" with role "([^"]*)" exists$`, s.aUserWithRoleExists)

	// Authentication steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInWithPassword)
	sc.Step(`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^I am anonymous$`, s.iAmAnonymous)
	sc.Step(`^I present a token for "([^"]*)" signed with another secret$`, s.iPresentAForeignToken)
	sc.Step(`^I present the authorization header "([^"]*)"$`, s.iPresentTheAuthorizationHeader)

	// Fixture steps
	sc.Step(`^I create a database "([^"]*)"$`, s.iCreateADatabase)
	sc.Step(`^"([^"]*)" is a member of database "([^"]*)"$`, s.isAMemberOfDatabase)
	sc.Step(`^the membership of "([^"]*)" in database "([^"]*)" is removed$`, s.theMembershipIsRemoved)

	// Request steps
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I send a (GET|POST|DELETE) request to "([^"]*)" for database "([^"]*)"$`, s.iSendARequestForDatabase)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Step(`^the response error code should be "([^"]*)"$`, s.theResponseErrorCodeShouldBe)
	sc.Step(`^all denial responses should be identical$`, s.allDenialResponsesShouldBeIdentical)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	return nil
}

func (s *StepsContext) aUserWithRoleExists(email, roleName string) error {
	role, err := identity.ParseRole(roleName)
	if err != nil {
		return err
	}
	users := gormstore.NewUsersStore(s.tc.DB, 4)
	_, err = users.CreateUser(context.Background(), store.NewUser{
		Email:    email,
		Password: defaultPassword,
		Role:     role,
	})
	return err
}

// Authentication steps

func (s *StepsContext) iLogInWithPassword(email, password string) error {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	if err := s.do("POST", "/users/login", body, nil); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(s.responseBody, &resp); err != nil {
			return err
		}
		s.authHeader = "Bearer " + resp.Token
	}
	return nil
}

func (s *StepsContext) iAmLoggedInAs(email string) error {
	if err := s.iLogInWithPassword(email, defaultPassword); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s failed with %d: %s", email, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) iAmAnonymous() error {
	s.authHeader = ""
	return nil
}

func (s *StepsContext) iPresentAForeignToken(email string) error {
	foreign, err := token.New([]byte("some-other-secret-0123456789abcdef"))
	if err != nil {
		return err
	}
	raw, err := foreign.Issue(identity.Claims{Email: email, Role: identity.RoleAdmin})
	if err != nil {
		return err
	}
	s.authHeader = "Bearer " + raw
	return nil
}

func (s *StepsContext) iPresentTheAuthorizationHeader(header string) error {
	s.authHeader = header
	return nil
}

// Fixture steps

func (s *StepsContext) iCreateADatabase(name string) error {
	if err := s.do("POST", "/databases", fmt.Sprintf(`{"name":%q}`, name), nil); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("create database %s failed with %d: %s", name, s.response.StatusCode, s.responseBody)
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return err
	}
	s.databases[name] = resp.ID
	return nil
}

func (s *StepsContext) isAMemberOfDatabase(email, name string) error {
	id, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database %q", name)
	}
	return s.tc.DB.Exec(`
		INSERT INTO database_users (user_id, database_id, role)
		SELECT id, ?, 'member' FROM users WHERE email = ?
	`, id, email).Error
}

func (s *StepsContext) theMembershipIsRemoved(email, name string) error {
	id, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database %q", name)
	}
	return s.tc.DB.Exec(`
		DELETE FROM database_users
		WHERE database_id = ? AND user_id = (SELECT id FROM users WHERE email = ?)
	`, id, email).Error
}

// Request steps

// expandPath replaces {db:name} with the id of a database created earlier
func (s *StepsContext) expandPath(path string) string {
	for name, id := range s.databases {
		path = strings.ReplaceAll(path, "{db:"+name+"}", strconv.FormatInt(id, 10))
	}
	return path
}

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.do(method, s.expandPath(path), "", nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, s.expandPath(path), body.Content, nil)
}

func (s *StepsContext) iSendARequestForDatabase(method, path, name string) error {
	id, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database %q", name)
	}
	return s.do(method, s.expandPath(path), "", map[string]string{"database-id": strconv.FormatInt(id, 10)})
}

func (s *StepsContext) do(method, path, body string, headers map[string]string) error {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	if err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusUnauthorized {
		s.lastBodies = append(s.lastBodies, string(s.responseBody))
	}
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(string(s.responseBody), expected) {
		return fmt.Errorf("expected body to contain %q, got %s", expected, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseErrorCodeShouldBe(expected string) error {
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return fmt.Errorf("response is not an error body: %s", s.responseBody)
	}
	if resp.Error.Code != expected {
		return fmt.Errorf("expected error code %q, got %q", expected, resp.Error.Code)
	}
	return nil
}

func (s *StepsContext) allDenialResponsesShouldBeIdentical() error {
	if len(s.lastBodies) < 2 {
		return fmt.Errorf("expected at least two denials, got %d", len(s.lastBodies))
	}
	for _, b := range s.lastBodies[1:] {
		if b != s.lastBodies[0] {
			return fmt.Errorf("denial bodies differ: %s vs %s", s.lastBodies[0], b)
		}
	}
	return nil
}
