package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agrovest/agrovest/internal/domain"
	authmw "github.com/agrovest/agrovest/internal/present/rest/middleware"
	"github.com/agrovest/agrovest/internal/service"
	"github.com/agrovest/agrovest/internal/usecase"
)

// --- mocks ---

type mockAccountRepo struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[string]mockAccount
}

type mockAccount struct {
	account domain.Account
	hashed  string
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: map[string]mockAccount{}}
}

func (m *mockAccountRepo) Create(ctx context.Context, role domain.Role, email string, hashedPassword string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(role) + ":" + email
	if _, ok := m.accounts[key]; ok {
		return domain.Account{}, domain.ErrEmailTaken
	}
	m.nextID++
	account := domain.Account{ID: m.nextID, Email: email, CreatedAt: time.Now()}
	m.accounts[key] = mockAccount{account: account, hashed: hashedPassword}
	return account, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, role domain.Role, email string) (domain.Account, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.accounts[string(role)+":"+email]
	if !ok {
		return domain.Account{}, "", domain.NotFoundError{Resource: "account"}
	}
	return entry.account, entry.hashed, nil
}

type mockTokenRepo struct {
	mu          sync.Mutex
	tokens      map[uint]domain.Token
	lastSearch  domain.SearchCriteria
	searchCalls int
}

func newMockTokenRepo(tokens ...domain.Token) *mockTokenRepo {
	m := &mockTokenRepo{tokens: map[uint]domain.Token{}}
	for i, t := range tokens {
		t.ID = uint(i + 1)
		m.tokens[t.ID] = t
	}
	return m
}

func (m *mockTokenRepo) Create(ctx context.Context, t domain.Token) (domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uint(len(m.tokens) + 1)
	t.TokensSold = 0
	t.IsFunded = false
	t.Status = domain.FundingOpen
	t.TokenStatus = domain.ReviewPending
	m.tokens[t.ID] = t
	return t, nil
}

func (m *mockTokenRepo) Get(ctx context.Context, id uint) (domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return domain.Token{}, domain.NotFoundError{Resource: "token"}
	}
	return t, nil
}

func (m *mockTokenRepo) ListOpen(ctx context.Context) ([]domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Token
	for _, t := range m.tokens {
		if !t.IsFunded {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTokenRepo) ListByCrop(ctx context.Context, cropID uint) ([]domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Token
	for _, t := range m.tokens {
		if t.CropID == cropID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTokenRepo) ListVerifiedByFarmer(ctx context.Context, farmerID uint) ([]domain.TokenView, error) {
	return nil, nil
}

func (m *mockTokenRepo) SetVerificationStatus(ctx context.Context, tokenID uint, status domain.ReviewStatus) (domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenID]
	if !ok {
		return domain.Token{}, domain.NotFoundError{Resource: "token"}
	}
	t.TokenStatus = status
	m.tokens[tokenID] = t
	return t, nil
}

func (m *mockTokenRepo) Reserve(ctx context.Context, tokenID uint, quantity int) (domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenID]
	if !ok {
		return domain.Token{}, domain.NotFoundError{Resource: "token"}
	}
	if err := t.Reserve(quantity); err != nil {
		return domain.Token{}, err
	}
	m.tokens[tokenID] = t
	return t, nil
}

func (m *mockTokenRepo) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TokenView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSearch = criteria
	m.searchCalls++
	return []domain.TokenView{}, nil
}

type mockCatalogRepo struct {
	mu      sync.Mutex
	farmers map[uint]domain.Farmer
	crops   map[uint]domain.Crop
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{farmers: map[uint]domain.Farmer{}, crops: map[uint]domain.Crop{}}
}

func (m *mockCatalogRepo) CreateFarmer(ctx context.Context, f domain.Farmer) (domain.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uint(len(m.farmers) + 1)
	f.RegistrationStatus = domain.ReviewPending
	m.farmers[f.ID] = f
	return f, nil
}

func (m *mockCatalogRepo) GetFarmer(ctx context.Context, id uint) (domain.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farmers[id]
	if !ok {
		return domain.Farmer{}, domain.NotFoundError{Resource: "farmer"}
	}
	return f, nil
}

func (m *mockCatalogRepo) GetFarmerByAccount(ctx context.Context, accountID uint) (domain.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.farmers {
		if f.AccountID == accountID {
			return f, nil
		}
	}
	return domain.Farmer{}, domain.NotFoundError{Resource: "farmer"}
}

func (m *mockCatalogRepo) UpdateFarmerStatus(ctx context.Context, farmerID uint, status domain.ReviewStatus) (domain.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farmers[farmerID]
	if !ok {
		return domain.Farmer{}, domain.NotFoundError{Resource: "farmer"}
	}
	f.RegistrationStatus = status
	m.farmers[farmerID] = f
	return f, nil
}

func (m *mockCatalogRepo) CreateCrop(ctx context.Context, c domain.Crop) (domain.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uint(len(m.crops) + 1)
	m.crops[c.ID] = c
	return c, nil
}

func (m *mockCatalogRepo) GetCrop(ctx context.Context, id uint) (domain.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return domain.Crop{}, domain.NotFoundError{Resource: "crop"}
	}
	return c, nil
}

func (m *mockCatalogRepo) ListCropsByFarmer(ctx context.Context, farmerID uint) ([]domain.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Crop
	for _, c := range m.crops {
		if c.FarmerID == farmerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockContractRepo struct {
	tokens    *mockTokenRepo
	contracts []domain.Contract
}

func (m *mockContractRepo) CreateContract(ctx context.Context, tokenID uint, investorID uint, quantity int, deliveryType domain.DeliveryType) (domain.Contract, domain.Token, error) {
	token, err := m.tokens.Reserve(ctx, tokenID, quantity)
	if err != nil {
		return domain.Contract{}, domain.Token{}, err
	}
	contract := domain.Contract{
		ID:            uint(len(m.contracts) + 1),
		TokenID:       tokenID,
		InvestorID:    investorID,
		Quantity:      quantity,
		PricePerToken: token.PricePerToken,
		TotalValue:    quantity * token.PricePerToken,
		DeliveryType:  deliveryType,
		ExpectedROI:   token.ExpectedROI,
		PayoutStatus:  domain.PayoutPending,
	}
	m.contracts = append(m.contracts, contract)
	return contract, token, nil
}

func (m *mockContractRepo) CreateInvestment(ctx context.Context, tokenID uint, investorID string, quantity int) (domain.Investment, domain.Token, error) {
	token, err := m.tokens.Reserve(ctx, tokenID, quantity)
	if err != nil {
		return domain.Investment{}, domain.Token{}, err
	}
	return domain.Investment{ID: 1, TokenID: tokenID, InvestorID: investorID, Quantity: quantity}, token, nil
}

func (m *mockContractRepo) ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]domain.Investment, error) {
	return []domain.Investment{}, nil
}

func (m *mockContractRepo) ListContractsByInvestor(ctx context.Context, investorID uint) ([]domain.Contract, error) {
	var out []domain.Contract
	for _, c := range m.contracts {
		if c.InvestorID == investorID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockPublisher struct {
	events []domain.FundingEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.FundingEvent) error {
	m.events = append(m.events, event)
	return nil
}

// streamStub emits funding events until the request context ends.
type streamStub struct{}

func (streamStub) Realtime(ctx context.Context, output chan<- domain.FundingEvent) {
	sold := 0
	for {
		sold++
		select {
		case <-ctx.Done():
			return
		case output <- domain.FundingEvent{TokenID: 1, TokensSold: sold, TokenCount: 100}:
		}
	}
}

type passthroughCache struct{}

func (passthroughCache) Get(criteria domain.SearchCriteria) ([]domain.TokenView, bool) {
	return nil, false
}
func (passthroughCache) Set(criteria domain.SearchCriteria, views []domain.TokenView) {}

// --- fixture ---

type fixture struct {
	e        *echo.Echo
	auth     *service.AuthService
	tokens   *mockTokenRepo
	catalog  *mockCatalogRepo
	accounts *mockAccountRepo
}

func newFixture(t *testing.T, tokens ...domain.Token) *fixture {
	t.Helper()

	accountRepo := newMockAccountRepo()
	catalogRepo := newMockCatalogRepo()
	tokenRepo := newMockTokenRepo(tokens...)
	contractRepo := &mockContractRepo{tokens: tokenRepo}
	publisher := &mockPublisher{}
	auth := service.NewAuthService("handler-test-secret", time.Hour)

	h := NewHandler(
		usecase.NewIdentityUsecase(accountRepo, auth, auth),
		usecase.NewCatalogUsecase(catalogRepo, tokenRepo),
		usecase.NewLedgerUsecase(tokenRepo, catalogRepo, publisher),
		usecase.NewContractUsecase(contractRepo, publisher),
		usecase.NewSearchUsecase(tokenRepo, passthroughCache{}),
		streamStub{},
		t.TempDir(),
	)

	e := echo.New()
	mw := authmw.NewAuthMiddleware(auth)
	e.Use(mw.IdentifyIdentity)
	h.RegisterRoutes(e, mw)

	return &fixture{e: e, auth: auth, tokens: tokenRepo, catalog: catalogRepo, accounts: accountRepo}
}

func (f *fixture) request(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	f.e.ServeHTTP(res, req)
	return res
}

func (f *fixture) bearer(t *testing.T, accountID uint, role domain.Role) string {
	t.Helper()
	token, err := f.auth.Issue(domain.Principal{AccountID: accountID, Email: "user@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func openToken(count, sold int) domain.Token {
	return domain.Token{
		CropID:        1,
		FarmerID:      1,
		TokenCount:    count,
		TokensSold:    sold,
		PricePerToken: 10,
		ExpectedROI:   12.5,
		Currency:      "USDT",
		Status:        domain.FundingOpen,
		TokenStatus:   domain.ReviewVerified,
	}
}

// --- tests ---

func TestSignupAndLoginEndpoints(t *testing.T) {
	f := newFixture(t)

	res := f.request(t, http.MethodPost, "/api/v1/investor/signup", map[string]string{
		"email":    "Alice@Example.com",
		"password": "hunter22",
	}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("signup: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var session struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.AccessToken == "" || session.TokenType != "bearer" {
		t.Fatalf("unexpected session payload: %s", res.Body.String())
	}

	// duplicate email for the same role conflicts
	res = f.request(t, http.MethodPost, "/api/v1/investor/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "other",
	}, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409 got %d", res.Code)
	}

	res = f.request(t, http.MethodPost, "/api/v1/investor/login", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPost, "/api/v1/investor/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401 got %d", res.Code)
	}
}

func TestTokenSearchDefaultsToOpenListings(t *testing.T) {
	f := newFixture(t)

	res := f.request(t, http.MethodGet, "/api/v1/tokens", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !f.tokens.lastSearch.OpenOnly {
		t.Fatalf("expected default search to target open listings")
	}

	res = f.request(t, http.MethodGet, "/api/v1/tokens/all", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if f.tokens.lastSearch.OpenOnly {
		t.Fatalf("expected /tokens/all to include funded listings")
	}
}

func TestTokenSearchParsesFilters(t *testing.T) {
	f := newFixture(t)

	res := f.request(t, http.MethodGet, "/api/v1/tokens?country=Kenya&min_roi=8.5&funded_only=true&organic_only=true&farmer_id=3&deadline=2026-12-01", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	got := f.tokens.lastSearch
	if got.Country != "Kenya" {
		t.Fatalf("country not forwarded: %+v", got)
	}
	if got.MinROI == nil || *got.MinROI != 8.5 {
		t.Fatalf("min_roi not forwarded: %+v", got)
	}
	if got.FundedOnly == nil || !*got.FundedOnly {
		t.Fatalf("funded_only not forwarded: %+v", got)
	}
	if !got.OrganicOnly {
		t.Fatalf("organic_only not forwarded: %+v", got)
	}
	if got.FarmerID == nil || *got.FarmerID != 3 {
		t.Fatalf("farmer_id not forwarded: %+v", got)
	}
	if got.Deadline == nil || got.Deadline.Format("2006-01-02") != "2026-12-01" {
		t.Fatalf("deadline not forwarded: %+v", got)
	}

	res = f.request(t, http.MethodGet, "/api/v1/tokens?min_roi=abc", nil, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed min_roi got %d", res.Code)
	}
}

func TestTokensByCropReportsFundingProgress(t *testing.T) {
	f := newFixture(t, openToken(100, 40))

	res := f.request(t, http.MethodGet, "/api/v1/tokens/crop/1", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var got []struct {
		FundingPercentage float64 `json:"funding_percentage"`
		TokensLeft        int     `json:"tokens_left"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one token, got %d", len(got))
	}
	if got[0].FundingPercentage != 40.0 || got[0].TokensLeft != 60 {
		t.Fatalf("unexpected funding figures: %+v", got[0])
	}
}

func TestCreateContractRequiresInvestorRole(t *testing.T) {
	f := newFixture(t, openToken(100, 0))

	body := map[string]any{"token_id": 1, "quantity": 10, "delivery_type": "money"}

	res := f.request(t, http.MethodPost, "/api/v1/contracts", body, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", res.Code)
	}

	res = f.request(t, http.MethodPost, "/api/v1/contracts", body, f.bearer(t, 7, domain.RoleFarmer))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("farmer role: expected 401 got %d", res.Code)
	}

	res = f.request(t, http.MethodPost, "/api/v1/contracts", body, f.bearer(t, 7, domain.RoleInvestor))
	if res.Code != http.StatusCreated {
		t.Fatalf("investor: expected 201 got %d: %s", res.Code, res.Body.String())
	}

	var contract domain.Contract
	if err := json.Unmarshal(res.Body.Bytes(), &contract); err != nil {
		t.Fatalf("decode contract: %v", err)
	}
	if contract.InvestorID != 7 || contract.TotalValue != 100 {
		t.Fatalf("unexpected contract: %+v", contract)
	}
}

func TestInvestReportsAvailableSupplyOnConflict(t *testing.T) {
	f := newFixture(t, openToken(100, 80))

	res := f.request(t, http.MethodPost, "/api/v1/investments", map[string]any{
		"token_id":    1,
		"investor_id": "42",
		"quantity":    30,
	}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Error     string `json:"error"`
		Available *int   `json:"available"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Available == nil || *payload.Available != 20 {
		t.Fatalf("expected available=20, got %s", res.Body.String())
	}
}

func TestInvestInFundedTokenConflicts(t *testing.T) {
	token := openToken(50, 50)
	token.IsFunded = true
	token.Status = domain.FundingFunded
	f := newFixture(t, token)

	res := f.request(t, http.MethodPost, "/api/v1/investments", map[string]any{
		"token_id":    1,
		"investor_id": "42",
		"quantity":    1,
	}, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", res.Code, res.Body.String())
	}
}

func TestTokenizeAndStatusEndpoints(t *testing.T) {
	f := newFixture(t)
	f.catalog.crops[1] = domain.Crop{ID: 1, FarmerID: 4, CropName: "Coffee"}

	res := f.request(t, http.MethodPost, "/api/v1/tokens", map[string]any{
		"crop_id":          1,
		"token_count":      500,
		"price_per_token":  20,
		"expected_roi":     15.0,
		"funding_deadline": "2026-11-30",
	}, "")
	if res.Code != http.StatusCreated {
		t.Fatalf("tokenize: expected 201 got %d: %s", res.Code, res.Body.String())
	}

	var token domain.Token
	if err := json.Unmarshal(res.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.FarmerID != 4 || token.Currency != "USDT" || token.TokenStatus != domain.ReviewPending {
		t.Fatalf("unexpected token: %+v", token)
	}

	res = f.request(t, http.MethodPost, "/api/v1/tokens/status", map[string]any{
		"token_id":   token.ID,
		"new_status": "verified",
	}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("status update: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPost, "/api/v1/tokens/status", map[string]any{
		"token_id":   token.ID,
		"new_status": "bogus",
	}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400 got %d", res.Code)
	}

	res = f.request(t, http.MethodPost, "/api/v1/tokens", map[string]any{
		"crop_id":          99,
		"token_count":      10,
		"price_per_token":  5,
		"funding_deadline": "2026-11-30",
	}, "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("unknown crop: expected 404 got %d", res.Code)
	}
}

func TestAddCropValidatesHarvestMonth(t *testing.T) {
	f := newFixture(t)
	f.catalog.farmers[1] = domain.Farmer{ID: 1, AccountID: 2, Name: "Amina", RegistrationStatus: domain.ReviewVerified}

	res := f.request(t, http.MethodPost, "/api/v1/crops", map[string]any{
		"farmer_id":              1,
		"crop_name":              "Coffee",
		"variety":                "Arabica",
		"planting_date":          "2026-03-15",
		"expected_harvest_month": "October",
		"farm_location":          "Mount Kenya",
		"organic_certified":      true,
	}, "")
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPost, "/api/v1/crops", map[string]any{
		"farmer_id":              1,
		"crop_name":              "Coffee",
		"planting_date":          "2026-03-15",
		"expected_harvest_month": "Octember",
	}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("invalid month: expected 400 got %d", res.Code)
	}
}

func TestRealtimeStreamsFundingEvents(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/realtime"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var event domain.FundingEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.TokenID != 1 || event.TokenCount != 100 {
		t.Fatalf("unexpected event: %+v", event)
	}

	// heartbeats are accepted without breaking the stream
	if err := conn.WriteJSON(map[string]string{"type": "h"}); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read after heartbeat: %v", err)
	}

	err = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRealtimeReleasesConnectionGoroutines(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/realtime"

	baseline := runtime.NumGoroutine()

	// abrupt closes: the server side hits a write error instead of a close
	// handshake, so both per-connection goroutines must still wind down
	const conns = 5
	for i := 0; i < conns; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		var event domain.FundingEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		conn.UnderlyingConn().Close()
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("connection goroutines not released: baseline %d, now %d",
				baseline, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
