package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agrovest/agrovest/internal/domain"
	authmw "github.com/agrovest/agrovest/internal/present/rest/middleware"
	"github.com/agrovest/agrovest/internal/present/rest/presenter"
	"github.com/agrovest/agrovest/internal/usecase"
)

// FundingStream feeds committed funding events to realtime subscribers.
// Implemented by service.SignalService.
type FundingStream interface {
	Realtime(ctx context.Context, output chan<- domain.FundingEvent)
}

type Handler struct {
	identity  *usecase.IdentityUsecase
	catalog   *usecase.CatalogUsecase
	ledger    *usecase.LedgerUsecase
	contract  *usecase.ContractUsecase
	search    *usecase.SearchUsecase
	signal    FundingStream
	uploadDir string
}

func NewHandler(
	identity *usecase.IdentityUsecase,
	catalog *usecase.CatalogUsecase,
	ledger *usecase.LedgerUsecase,
	contract *usecase.ContractUsecase,
	search *usecase.SearchUsecase,
	signal FundingStream,
	uploadDir string,
) *Handler {
	return &Handler{
		identity:  identity,
		catalog:   catalog,
		ledger:    ledger,
		contract:  contract,
		search:    search,
		signal:    signal,
		uploadDir: uploadDir,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *authmw.AuthMiddleware) {
	e.POST("/api/v1/farmer/signup", h.handleFarmerSignup)
	e.POST("/api/v1/farmer/login", h.handleFarmerLogin)
	e.POST("/api/v1/investor/signup", h.handleInvestorSignup)
	e.POST("/api/v1/investor/login", h.handleInvestorLogin)

	e.POST("/api/v1/farmers", h.handleRegisterFarmer, auth.Require(domain.RoleFarmer))
	e.POST("/api/v1/farmers/status", h.handleUpdateFarmerStatus)
	e.GET("/api/v1/farmer/dashboard", h.handleFarmerDashboard, auth.Require(domain.RoleFarmer))

	e.POST("/api/v1/crops", h.handleAddCrop)
	e.GET("/api/v1/crops", h.handleCropsByFarmer)

	e.POST("/api/v1/tokens", h.handleTokenize)
	e.GET("/api/v1/tokens", h.handleTokenSearch)
	e.GET("/api/v1/tokens/all", h.handleAllTokens)
	e.GET("/api/v1/tokens/open", h.handleOpenTokens)
	e.GET("/api/v1/tokens/crop/:crop_id", h.handleTokensByCrop)
	e.GET("/api/v1/tokens/farmer", h.handleTokensByFarmer)
	e.POST("/api/v1/tokens/status", h.handleUpdateTokenStatus)

	e.POST("/api/v1/investments", h.handleInvest)
	e.GET("/api/v1/investments", h.handleMyInvestments, auth.Require(domain.RoleInvestor))
	e.POST("/api/v1/contracts", h.handleCreateContract, auth.Require(domain.RoleInvestor))
	e.GET("/api/v1/contracts", h.handleMyContracts, auth.Require(domain.RoleInvestor))

	e.GET("/realtime", h.handleRealtime)
}

func principalFrom(c echo.Context) (domain.Principal, bool) {
	principal, ok := c.Request().Context().Value(domain.PrincipalCtxKey).(domain.Principal)
	return principal, ok
}

// --- identity ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(c echo.Context, role domain.Role) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	session, err := h.identity.Signup(c.Request().Context(), role, req.Email, req.Password)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleLogin(c echo.Context, role domain.Role) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	session, err := h.identity.Login(c.Request().Context(), role, req.Email, req.Password)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, session)
}

func (h *Handler) handleFarmerSignup(c echo.Context) error {
	return h.handleSignup(c, domain.RoleFarmer)
}

func (h *Handler) handleFarmerLogin(c echo.Context) error {
	return h.handleLogin(c, domain.RoleFarmer)
}

func (h *Handler) handleInvestorSignup(c echo.Context) error {
	return h.handleSignup(c, domain.RoleInvestor)
}

func (h *Handler) handleInvestorLogin(c echo.Context) error {
	return h.handleLogin(c, domain.RoleInvestor)
}

// --- catalog ---

func (h *Handler) handleRegisterFarmer(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	farmSize, err := strconv.ParseFloat(c.FormValue("farm_size_ha"), 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "farm_size_ha must be a number")
	}

	docPath, err := h.saveIdentityDocument(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "identity_document upload is required")
	}

	farmer, err := h.catalog.RegisterFarmer(c.Request().Context(), principal, usecase.RegisterFarmerInput{
		Name:             c.FormValue("name"),
		Country:          c.FormValue("country"),
		Region:           c.FormValue("region"),
		Address:          c.FormValue("address"),
		FarmSizeHa:       farmSize,
		Contact:          c.FormValue("contact"),
		IdentityDocument: docPath,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, farmer)
}

func (h *Handler) saveIdentityDocument(c echo.Context) (string, error) {
	fileHeader, err := c.FormFile("identity_document")
	if err != nil {
		return "", err
	}
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

type farmerStatusRequest struct {
	FarmerID  uint   `json:"farmer_id"`
	NewStatus string `json:"new_status"`
}

func (h *Handler) handleUpdateFarmerStatus(c echo.Context) error {
	var req farmerStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	farmer, err := h.catalog.UpdateFarmerStatus(c.Request().Context(), req.FarmerID, domain.ReviewStatus(req.NewStatus))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, farmer)
}

func (h *Handler) handleFarmerDashboard(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	dashboard, err := h.catalog.FarmerDashboard(c.Request().Context(), principal)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, dashboard)
}

type addCropRequest struct {
	FarmerID             uint   `json:"farmer_id"`
	CropName             string `json:"crop_name"`
	Variety              string `json:"variety"`
	PlantingDate         string `json:"planting_date"`
	ExpectedHarvestMonth string `json:"expected_harvest_month"`
	FarmLocation         string `json:"farm_location"`
	OrganicCertified     bool   `json:"organic_certified"`
}

func (h *Handler) handleAddCrop(c echo.Context) error {
	var req addCropRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	crop, err := h.catalog.AddCrop(c.Request().Context(), usecase.AddCropInput{
		FarmerID:             req.FarmerID,
		CropName:             req.CropName,
		Variety:              req.Variety,
		PlantingDate:         req.PlantingDate,
		ExpectedHarvestMonth: domain.Month(req.ExpectedHarvestMonth),
		FarmLocation:         req.FarmLocation,
		OrganicCertified:     req.OrganicCertified,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, crop)
}

func (h *Handler) handleCropsByFarmer(c echo.Context) error {
	farmerID, err := queryUint(c, "farmer_id")
	if err != nil {
		return presenter.BadRequestMessage(c, "farmer_id is required")
	}
	crops, err := h.catalog.CropsByFarmer(c.Request().Context(), farmerID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, crops)
}

// --- token ledger ---

type tokenizeRequest struct {
	CropID             uint    `json:"crop_id"`
	TokenCount         int     `json:"token_count"`
	PricePerToken      int     `json:"price_per_token"`
	ExpectedYieldUnit  string  `json:"expected_yield_unit"`
	ExpectedTotalYield int     `json:"expected_total_yield"`
	ExpectedROI        float64 `json:"expected_roi"`
	FundingDeadline    string  `json:"funding_deadline"`
	Currency           string  `json:"currency"`
}

func (h *Handler) handleTokenize(c echo.Context) error {
	var req tokenizeRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	token, err := h.ledger.Tokenize(c.Request().Context(), usecase.TokenizeInput{
		CropID:             req.CropID,
		TokenCount:         req.TokenCount,
		PricePerToken:      req.PricePerToken,
		ExpectedYieldUnit:  req.ExpectedYieldUnit,
		ExpectedTotalYield: req.ExpectedTotalYield,
		ExpectedROI:        req.ExpectedROI,
		FundingDeadline:    req.FundingDeadline,
		Currency:           req.Currency,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, token)
}

func (h *Handler) handleTokenSearch(c echo.Context) error {
	criteria, err := searchCriteriaFromQuery(c, domain.NewSearchCriteria())
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	views, err := h.search.Search(c.Request().Context(), criteria)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleAllTokens(c echo.Context) error {
	criteria, err := searchCriteriaFromQuery(c, domain.SearchCriteria{})
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	views, err := h.search.Search(c.Request().Context(), criteria)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleOpenTokens(c echo.Context) error {
	tokens, err := h.ledger.ListOpenTokens(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, tokenSummaries(tokens))
}

func (h *Handler) handleTokensByCrop(c echo.Context) error {
	cropID, err := strconv.ParseUint(c.Param("crop_id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid crop id")
	}
	tokens, err := h.ledger.TokensByCrop(c.Request().Context(), uint(cropID))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, tokenSummaries(tokens))
}

func (h *Handler) handleTokensByFarmer(c echo.Context) error {
	farmerID, err := queryUint(c, "farmer_id")
	if err != nil {
		return presenter.BadRequestMessage(c, "farmer_id is required")
	}
	views, err := h.ledger.TokensByFarmer(c.Request().Context(), farmerID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, views)
}

type tokenStatusRequest struct {
	TokenID   uint   `json:"token_id"`
	NewStatus string `json:"new_status"`
}

func (h *Handler) handleUpdateTokenStatus(c echo.Context) error {
	var req tokenStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	token, err := h.ledger.SetVerificationStatus(c.Request().Context(), req.TokenID, domain.ReviewStatus(req.NewStatus))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{
		"message":    "token status updated",
		"token_id":   token.ID,
		"new_status": token.TokenStatus,
	})
}

// tokenSummary carries a bare token with its derived funding figures, for
// reads that do not join crop and farmer context.
type tokenSummary struct {
	domain.Token
	FundingPercentage float64 `json:"funding_percentage"`
	TokensLeft        int     `json:"tokens_left"`
}

func tokenSummaries(tokens []domain.Token) []tokenSummary {
	out := make([]tokenSummary, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenSummary{
			Token:             t,
			FundingPercentage: t.FundingPercentage(),
			TokensLeft:        t.TokensLeft(),
		})
	}
	return out
}

// --- contracts & investments ---

type investRequest struct {
	TokenID    uint   `json:"token_id"`
	InvestorID string `json:"investor_id"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) handleInvest(c echo.Context) error {
	var req investRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	investment, err := h.contract.Invest(c.Request().Context(), usecase.InvestInput{
		TokenID:    req.TokenID,
		InvestorID: req.InvestorID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, investment)
}

type contractRequest struct {
	TokenID      uint   `json:"token_id"`
	Quantity     int    `json:"quantity"`
	DeliveryType string `json:"delivery_type"`
}

func (h *Handler) handleCreateContract(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	var req contractRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	contract, err := h.contract.CreateContract(c.Request().Context(), principal, usecase.CreateContractInput{
		TokenID:      req.TokenID,
		Quantity:     req.Quantity,
		DeliveryType: domain.DeliveryType(req.DeliveryType),
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, contract)
}

func (h *Handler) handleMyInvestments(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	investments, err := h.contract.InvestmentsByInvestor(c.Request().Context(), strconv.FormatUint(uint64(principal.AccountID), 10))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, investments)
}

func (h *Handler) handleMyContracts(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	contracts, err := h.contract.ContractsByInvestor(c.Request().Context(), principal.AccountID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, contracts)
}

// --- query helpers ---

func queryUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return uint(v), err
}

func searchCriteriaFromQuery(c echo.Context, criteria domain.SearchCriteria) (domain.SearchCriteria, error) {
	criteria.Country = c.QueryParam("country")
	criteria.Region = c.QueryParam("region")
	criteria.CropName = c.QueryParam("crop_name")
	criteria.CropVariety = c.QueryParam("crop_variety")
	criteria.Status = c.QueryParam("status")

	if v := c.QueryParam("farmer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return criteria, fmt.Errorf("invalid farmer_id")
		}
		farmerID := uint(id)
		criteria.FarmerID = &farmerID
	}
	if v := c.QueryParam("min_roi"); v != "" {
		roi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, fmt.Errorf("invalid min_roi")
		}
		criteria.MinROI = &roi
	}
	if v := c.QueryParam("deadline"); v != "" {
		deadline, err := time.Parse("2006-01-02", v)
		if err != nil {
			return criteria, fmt.Errorf("invalid deadline")
		}
		criteria.Deadline = &deadline
	}
	if v := c.QueryParam("created_after"); v != "" {
		after, err := time.Parse("2006-01-02", v)
		if err != nil {
			return criteria, fmt.Errorf("invalid created_after")
		}
		criteria.CreatedAfter = &after
	}
	if v := c.QueryParam("funded_only"); v != "" {
		funded, err := strconv.ParseBool(v)
		if err != nil {
			return criteria, fmt.Errorf("invalid funded_only")
		}
		criteria.FundedOnly = &funded
	}
	if v := c.QueryParam("organic_only"); v != "" {
		organic, err := strconv.ParseBool(v)
		if err != nil {
			return criteria, fmt.Errorf("invalid organic_only")
		}
		criteria.OrganicOnly = organic
	}
	return criteria, nil
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	output := make(chan domain.FundingEvent)

	go h.signal.Realtime(ctx, output)

	// buffered so the reader can always signal and exit, even when the write
	// loop has already returned
	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
