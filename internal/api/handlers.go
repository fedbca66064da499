package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/service"
)

func (h *handler) handleStages(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseRequestKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stages, err := h.svc.Registry.Stages(kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stages)
}

func (h *handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var kind domain.RequestKind
	if raw := q.Get("kind"); raw != "" {
		k, err := domain.ParseRequestKind(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		kind = k
	}
	filter := repository.RequestFilter{RequesterID: q.Get("requester")}
	for _, o := range q["outcome"] {
		if o = strings.TrimSpace(o); o != "" {
			filter.Outcomes = append(filter.Outcomes, domain.StatusOutcome(o))
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidRequest))
			return
		}
		filter.Limit = n
	}

	reqs, err := h.svc.Requests.List(r.Context(), kind, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]RequestView, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, requestView(req))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateRequestBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	kind, err := domain.ParseRequestKind(body.Kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(body.Amount))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: amount %q: %v", domain.ErrInvalidRequest, body.Amount, err))
		return
	}
	base := domain.Request{RequesterID: body.RequesterID, Amount: amount, Currency: body.Currency}

	var (
		created *domain.Request
		opened  *service.StageOpened
	)
	switch kind {
	case domain.KindInvestment:
		inv := &domain.InvestmentRequest{
			Request:       base,
			ProjectName:   body.ProjectName,
			Category:      body.Category,
			Description:   body.Description,
			HorizonMonths: body.HorizonMonths,
		}
		opened, err = h.svc.Requests.CreateInvestment(r.Context(), inv, body.Submit)
		created = &inv.Request
	case domain.KindCashRequest:
		cr := &domain.CashRequest{Request: base, Purpose: body.Purpose, Payee: body.Payee, NeededBy: body.NeededBy}
		opened, err = h.svc.Requests.CreateCash(r.Context(), cr, body.Submit)
		created = &cr.Request
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"request": requestView(created),
		"stage":   stageView(opened),
	})
}

// lookup resolves the {code} path parameter.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Request, bool) {
	req, err := h.svc.Requests.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return req, true
}

func (h *handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, requestView(req))
}

func (h *handler) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	opened, err := h.svc.Engine.StartWorkflow(r.Context(), req.Kind, req.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stageView(opened))
}

func (h *handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body DecisionBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	res, err := h.svc.Engine.ProcessDecision(r.Context(), service.DecisionInput{
		Kind:      req.Kind,
		RequestID: req.ID,
		ActorID:   body.ActorID,
		Action:    domain.Action(body.Action),
		Comments:  body.Comments,
		Stage:     body.Stage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Status = res.Status
	writeJSON(w, http.StatusOK, DecisionView{
		Success:   res.Success,
		Message:   res.Message,
		Record:    recordView(res.Record),
		Status:    res.Status.String(),
		NextStage: stageView(res.NextStage),
		Request:   requestView(req),
	})
}

func (h *handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body ResubmitBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	opened, err := h.svc.Engine.Resubmit(r.Context(), req.Kind, req.ID, body.RequesterID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stageView(opened))
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	recs, err := h.svc.Engine.QueryApprovalHistory(r.Context(), req.Kind, req.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordView(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleRequestTasks(w http.ResponseWriter, r *http.Request) {
	req, ok := h.lookup(w, r)
	if !ok {
		return
	}
	tasks, err := h.svc.Tasks.ListForRequest(r.Context(), req.Kind, req.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskViews(tasks))
}

func (h *handler) handleUserTasks(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	tasks, err := h.svc.Tasks.ListForUser(r.Context(), chi.URLParam(r, "user"), all)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskViews(tasks))
}

func (h *handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	ns, err := h.svc.Inbox.List(r.Context(), chi.URLParam(r, "user"), unread)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationViews(ns))
}

func (h *handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Inbox.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SLA.Sweep(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SweepView{Checked: res.Checked, Overdue: taskViews(res.Overdue), At: res.At})
}
