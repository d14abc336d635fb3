package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"buildingportal/internal/middleware"
	"buildingportal/internal/models"
	"buildingportal/internal/service"
	"buildingportal/internal/util"
)

type signupRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Room         string `json:"room"`
	Phone        string `json:"phone"`
	CaptchaToken string `json:"captchaToken"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	if h.cfg.CaptchaEnabled {
		ip := middleware.ClientIP(r, h.cfg.TrustProxy)
		if err := h.captchaVerifier.Verify(r.Context(), req.CaptchaToken, ip); err != nil {
			h.logger.Info("signup captcha rejected", zap.Error(err), zap.String("remote_ip", ip))
			util.WriteError(w, http.StatusBadRequest, "captcha_required", "captcha validation failed", middleware.RequestID(r.Context()))
			return
		}
	}
	p, err := h.svc.Signup(r.Context(), service.SignupRequest{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Room:     req.Room,
		Phone:    req.Phone,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, map[string]any{"message": "signup complete", "user": p})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, res)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Me(r.Context(), claims(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

type complaintRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

func (in complaintRequest) input() service.ComplaintInput {
	return service.ComplaintInput{Title: in.Title, Content: in.Content, Priority: in.Priority}
}

func (h *Handlers) ListComplaints(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListComplaints(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetComplaint(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetComplaint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}

func (h *Handlers) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	c, err := h.svc.CreateComplaint(r.Context(), claims(r), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handlers) UpdateComplaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	c, err := h.svc.UpdateComplaint(r.Context(), claims(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) AdminSetComplaintStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	c, err := h.svc.SetComplaintStatus(r.Context(), claims(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}

func (h *Handlers) AdminDeleteComplaint(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteComplaint(r.Context(), claims(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "complaint deleted"})
}

type moveInCardRequest struct {
	Name           string           `json:"name"`
	Company        string           `json:"company"`
	EmployeeID     string           `json:"employeeId"`
	Phone          string           `json:"phone"`
	Room           string           `json:"room"`
	HouseholdCount int              `json:"householdCount"`
	Vehicles       []models.Vehicle `json:"vehicles"`
}

func (h *Handlers) SubmitMoveInCard(w http.ResponseWriter, r *http.Request) {
	var req moveInCardRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	card, err := h.svc.SubmitMoveInCard(r.Context(), claims(r), service.CardApplication{
		Name:           req.Name,
		Company:        req.Company,
		EmployeeID:     req.EmployeeID,
		Phone:          req.Phone,
		Room:           req.Room,
		HouseholdCount: req.HouseholdCount,
		Vehicles:       req.Vehicles,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, card)
}

func (h *Handlers) AdminListMoveInCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListMoveInCards(r.Context(), claims(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, cards)
}

func (h *Handlers) AdminSetMoveInCardStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	card, err := h.svc.SetMoveInCardStatus(r.Context(), claims(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, card)
}

func (h *Handlers) AdminDeleteMoveInCard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMoveInCard(r.Context(), claims(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "move-in card deleted"})
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), claims(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileImage string `json:"profileImage"`
	}
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	p, err := h.svc.UpdateProfileImage(r.Context(), claims(r), req.ProfileImage)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), claims(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, users)
}

func (h *Handlers) AdminSetUserVerified(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verified *bool `json:"isVerified"`
	}
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	if req.Verified == nil {
		h.badRequest(w, r, "isVerified is required")
		return
	}
	p, err := h.svc.SetUserVerified(r.Context(), claims(r), chi.URLParam(r, "id"), *req.Verified)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

func (h *Handlers) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), claims(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

type noticeRequest struct {
	Category string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
}

func (in noticeRequest) input() service.NoticeInput {
	return service.NoticeInput{Category: in.Category, Title: in.Title, Content: in.Content, Author: in.Author}
}

func (h *Handlers) ListNotices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	out, err := h.svc.ListNotices(r.Context(), models.NoticeQuery{
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetNotice(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ViewNotice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, n)
}

func (h *Handlers) AdminCreateNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	n, err := h.svc.CreateNotice(r.Context(), claims(r), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handlers) AdminUpdateNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := util.DecodeJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err.Error())
		return
	}
	n, err := h.svc.UpdateNotice(r.Context(), claims(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, n)
}

func (h *Handlers) AdminDeleteNotice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNotice(r.Context(), claims(r), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "notice deleted"})
}

func (h *Handlers) BuildingStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.BuildingStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, out)
}
