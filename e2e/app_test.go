package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type expenseType struct {
	ID          int64  `json:"id"`
	ExpenseName string `json:"expense_name"`
}

type vendor struct {
	ID         int64  `json:"id"`
	VendorName string `json:"vendor_name"`
}

type expense struct {
	ID            int64        `json:"id"`
	InvoiceID     string       `json:"invoice_id"`
	IssueDate     *string      `json:"issue_date"`
	PaymentStatus string       `json:"payment_status"`
	ExpenseType   *expenseType `json:"expense_type"`
	Vendor        *vendor      `json:"vendor"`
}

type listResponse struct {
	User struct {
		Email string `json:"email"`
	} `json:"user"`
	ExpenseData []expense `json:"expenseData"`
}

type message struct {
	Message string `json:"message"`
}

// E2ETestSuite drives the running server over HTTP. Each test gets its own
// request context, so cookies never leak between tests.
type E2ETestSuite struct {
	suite.Suite
	pw  *playwright.Playwright
	api playwright.APIRequestContext
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	api, err := suite.pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(appURL),
	})
	require.NoError(suite.T(), err, "could not create request context")
	suite.api = api
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.api != nil {
		suite.api.Dispose()
	}
}

func (suite *E2ETestSuite) decode(resp playwright.APIResponse, v any) {
	require.NoError(suite.T(), resp.JSON(v), "could not decode response")
}

func (suite *E2ETestSuite) login(email, password string) {
	resp, err := suite.api.Post("/user/login", playwright.APIRequestContextPostOptions{
		Data: map[string]any{"email": email, "password": password},
	})
	require.NoError(suite.T(), err, "login request failed")
	require.Equal(suite.T(), http.StatusOK, resp.Status(), "login should succeed")
}

func (suite *E2ETestSuite) post(path string, data map[string]any, wantStatus int, v any) {
	resp, err := suite.api.Post(path, playwright.APIRequestContextPostOptions{Data: data})
	require.NoError(suite.T(), err, "POST %s failed", path)
	require.Equal(suite.T(), wantStatus, resp.Status(), "POST %s", path)
	if v != nil {
		suite.decode(resp, v)
	}
}

func (suite *E2ETestSuite) get(path string, v any) {
	resp, err := suite.api.Get(path)
	require.NoError(suite.T(), err, "GET %s failed", path)
	require.Equal(suite.T(), http.StatusOK, resp.Status(), "GET %s", path)
	suite.decode(resp, v)
}

func (suite *E2ETestSuite) TestHealthCheck() {
	resp, err := suite.api.Get("/healthz")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.Status())
}

func (suite *E2ETestSuite) TestUnauthenticatedAccessIsRejected() {
	resp, err := suite.api.Get("/api/expense")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.Status())

	resp, err = suite.api.Post("/user/logout")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, resp.Status())
}

func (suite *E2ETestSuite) TestBadCredentials() {
	resp, err := suite.api.Post("/user/login", playwright.APIRequestContextPostOptions{
		Data: map[string]any{"email": adminEmail, "password": "wrong-password"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.Status())

	var msg message
	suite.decode(resp, &msg)
	assert.Equal(suite.T(), "Incorrect email or password, please try again", msg.Message)
}

func (suite *E2ETestSuite) TestExpenseFlow() {
	suite.post("/user/register", map[string]any{
		"firstName":       "Flow",
		"lastName":        "Tester",
		"email":           "flow@example.com",
		"password":        "flow-password",
		"confirmPassword": "flow-password",
	}, http.StatusCreated, nil)
	suite.login("flow@example.com", "flow-password")

	var rent expenseType
	suite.post("/api/expense/type", map[string]any{"expense_name": "Flow Rent"}, http.StatusCreated, &rent)
	var landlord vendor
	suite.post("/api/expense/vendor", map[string]any{"vendor_name": "Flow Landlord"}, http.StatusCreated, &landlord)

	suite.post("/api/expense/addexpense", map[string]any{
		"invoice_id":     "FLOW-1",
		"type_id":        rent.ID,
		"vendor_id":      landlord.ID,
		"issue_date":     "2024-01-01",
		"due_date":       "2024-01-15",
		"amount":         "1200.00",
		"payment_status": "unpaid",
	}, http.StatusCreated, nil)
	var second expense
	suite.post("/api/expense/addexpense", map[string]any{
		"invoice_id":     "FLOW-2",
		"issue_date":     "2024-02-01",
		"amount":         "-200.00",
		"payment_status": "paid",
	}, http.StatusCreated, &second)

	var all listResponse
	suite.get("/api/expense?sort=issue_date&order=desc", &all)
	assert.Equal(suite.T(), "flow@example.com", all.User.Email)
	require.Len(suite.T(), all.ExpenseData, 2)
	assert.Equal(suite.T(), "FLOW-2", all.ExpenseData[0].InvoiceID)

	var filtered listResponse
	suite.get(fmt.Sprintf("/api/expense?expense_type=%d&vendor=%d&start_issue_date=2024-01-01&end_issue_date=2024-01-31", rent.ID, landlord.ID), &filtered)
	require.Len(suite.T(), filtered.ExpenseData, 1)
	got := filtered.ExpenseData[0]
	assert.Equal(suite.T(), "FLOW-1", got.InvoiceID)
	require.NotNil(suite.T(), got.ExpenseType)
	assert.Equal(suite.T(), "Flow Rent", got.ExpenseType.ExpenseName)
	require.NotNil(suite.T(), got.Vendor)
	assert.Equal(suite.T(), "Flow Landlord", got.Vendor.VendorName)

	var total float64
	suite.get("/api/expense/total", &total)
	assert.InDelta(suite.T(), 1000.0, total, 1e-9)

	resp, err := suite.api.Put(fmt.Sprintf("/api/expense/%d", second.ID), playwright.APIRequestContextPutOptions{
		Data: map[string]any{"payment_status": "refunded"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.Status())

	resp, err = suite.api.Delete(fmt.Sprintf("/api/expense/%d", second.ID))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.Status())

	resp, err = suite.api.Post("/user/logout")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, resp.Status())

	resp, err = suite.api.Get("/api/expense")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.Status())
}

func (suite *E2ETestSuite) TestAdminWasBootstrapped() {
	suite.login(adminEmail, adminPassword)

	var list listResponse
	suite.get("/api/expense", &list)
	assert.Equal(suite.T(), adminEmail, list.User.Email)
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
