package http

import (
	"net/http"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

type newTenderRequest struct {
	routeFields
	Title              string    `json:"title"`
	BudgetAmount       *string   `json:"budget_amount"`
	BudgetCurrency     *string   `json:"budget_currency"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	Publish            bool      `json:"publish"`
}

func (r newTenderRequest) budget() (*kernel.Money, error) {
	if r.BudgetAmount == nil {
		return nil, nil
	}
	var currency string
	if r.BudgetCurrency != nil {
		currency = *r.BudgetCurrency
	}
	m, err := kernel.ParseMoney(*r.BudgetAmount, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type newBidRequest struct {
	ProposedPrice string `json:"proposed_price"`
	Currency      string `json:"currency"`
	Notes         string `json:"notes"`
}

type tenderResponse struct {
	Message string             `json:"message,omitempty"`
	Tender  queries.TenderView `json:"tender"`
}

type awardResponse struct {
	Message string             `json:"message"`
	Order   queries.OrderView  `json:"order"`
	Tender  queries.TenderView `json:"tender"`
}

// CreateTender handles POST /tenders.
func (s *Server) CreateTender(c echo.Context) error {
	var req newTenderRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	route, cargo, err := req.toDomain()
	if err != nil {
		return s.fail(c, err)
	}
	budget, err := req.budget()
	if err != nil {
		return s.fail(c, err)
	}

	tenderID := kernel.NewUUID()
	cmd, err := commands.NewCreateTenderCommand(
		tenderID, principal(c), req.Title, route, cargo, budget, req.SubmissionDeadline, req.Publish)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Tenders.Create(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondTender(c, http.StatusCreated, tenderID, "Tender created")
}

// GetTender handles GET /tenders/{id}.
func (s *Server) GetTender(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondTender(c, http.StatusOK, id, "")
}

// OpenTender handles POST /tenders/{id}/open.
func (s *Server) OpenTender(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewOpenTenderCommand(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Tenders.Open(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondTender(c, http.StatusOK, id, "Tender opened")
}

// CancelTender handles POST /tenders/{id}/cancel.
func (s *Server) CancelTender(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCancelTenderCommand(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Tenders.Cancel(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondTender(c, http.StatusOK, id, "Tender cancelled")
}

// SubmitBid handles POST /tenders/{id}/bids.
func (s *Server) SubmitBid(c echo.Context) error {
	tenderID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req newBidRequest
	if err = bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	price, err := kernel.ParseMoney(req.ProposedPrice, req.Currency)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSubmitBidCommand(tenderID, kernel.NewUUID(), principal(c), price, req.Notes)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Tenders.SubmitBid(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondTender(c, http.StatusCreated, tenderID, "Bid submitted")
}

// AwardBid handles POST /tenders/{id}/bids/{bidId}/award.
func (s *Server) AwardBid(c echo.Context) error {
	tenderID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	bidID, err := pathID(c, "bidId")
	if err != nil {
		return s.fail(c, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewAwardBidCommand(tenderID, bidID, orderID, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Tenders.Award(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	tender, err := s.readTender(c, tenderID)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.readOrder(c, orderID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, awardResponse{Message: "Bid awarded", Order: created, Tender: tender})
}

func (s *Server) readTender(c echo.Context, id kernel.UUID) (queries.TenderView, error) {
	q, err := queries.NewGetTenderQuery(id, principal(c))
	if err != nil {
		return queries.TenderView{}, err
	}
	return s.h.GetTender.Handle(c.Request().Context(), q)
}

func (s *Server) respondTender(c echo.Context, status int, id kernel.UUID, message string) error {
	view, err := s.readTender(c, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, tenderResponse{Message: message, Tender: view})
}
