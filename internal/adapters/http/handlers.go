package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/app/consultation"
	"github.com/dkeye/Hearings/internal/domain"
)

const sessionUserKey = "username"

var errScreened = errors.New("participant is screened from the room")

// ConferenceService is the conference store as the operator API uses it.
type ConferenceService interface {
	GetConference(ctx context.Context, id uuid.UUID) (*domain.Conference, error)
	ForceGetConference(ctx context.Context, id uuid.UUID) (*domain.Conference, error)
	MutateConference(ctx context.Context, id uuid.UUID, fn func(*domain.Conference) error) (*domain.Conference, error)
	RemoveConference(ctx context.Context, id uuid.UUID) error
}

type VideoControlService interface {
	Get(ctx context.Context, conferenceID uuid.UUID) (*domain.ConferenceVideoControlStatuses, error)
	UpdateParticipant(ctx context.Context, conferenceID uuid.UUID, participantID string, status domain.VideoControlStatus) (*domain.ConferenceVideoControlStatuses, error)
}

type ProfileLookup interface {
	Get(ctx context.Context, username string) (*domain.UserProfile, error)
}

// API serves the operator endpoints over the conference core.
type API struct {
	Conferences   ConferenceService
	VideoControl  VideoControlService
	Consultations *consultation.Tracker
	Profiles      ProfileLookup
	now           func() time.Time
}

func NewAPI(conferences ConferenceService, video VideoControlService, tracker *consultation.Tracker, profiles ProfileLookup) *API {
	return &API{
		Conferences:   conferences,
		VideoControl:  video,
		Consultations: tracker,
		Profiles:      profiles,
		now:           time.Now,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
}

type LoginResponse struct {
	Username string `json:"username"`
}

type participantStatusRequest struct {
	Status domain.ParticipantStatus `json:"status"`
}

type startConsultationRequest struct {
	RoomLabel    string    `json:"room_label"`
	RequestedFor uuid.UUID `json:"requested_for"`
}

type answerRequest struct {
	Answer consultation.Answer `json:"answer"`
}

type invitationResponse struct {
	ID           uuid.UUID                         `json:"id"`
	ConferenceID uuid.UUID                         `json:"conference_id"`
	RoomLabel    string                            `json:"room_label"`
	RequestedFor uuid.UUID                         `json:"requested_for"`
	Answers      map[uuid.UUID]consultation.Answer `json:"answers"`
	Outcome      string                            `json:"outcome"`
}

type hostsResponse struct {
	Participants []uuid.UUID `json:"participants"`
	Endpoints    []uuid.UUID `json:"endpoints"`
}

func handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
		return
	}
	profile, err := domain.NewUserProfile(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, profile.Username)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Username: profile.Username})
}

func handleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Status(http.StatusNoContent)
}

// requireUser rejects requests without a logged-in session.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, _ := sessions.Default(c).Get(sessionUserKey).(string)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(sessionUserKey, username)
		c.Next()
	}
}

// requireOperator admits admins and hosts only.
func (a *API) requireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := a.Profiles.Get(c.Request.Context(), c.GetString(sessionUserKey))
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("user", c.GetString(sessionUserKey)).Msg("profile lookup")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile unavailable"})
			return
		}
		if !profile.IsAdmin() && !profile.IsHost() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator role required"})
			return
		}
		c.Next()
	}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, consultation.ErrInvitationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, consultation.ErrInvalidAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, errScreened):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (a *API) getConference(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	conf, err := a.Conferences.GetConference(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

func (a *API) refreshConference(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	conf, err := a.Conferences.ForceGetConference(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

func (a *API) removeConference(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := a.Conferences.RemoveConference(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) getHosts(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	conf, err := a.Conferences.GetConference(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	hosts := conf.GetHosts()
	resp := hostsResponse{Participants: []uuid.UUID{}, Endpoints: []uuid.UUID{}}
	for _, p := range hosts.Participants {
		resp.Participants = append(resp.Participants, p.ID)
	}
	for _, e := range hosts.Endpoints {
		resp.Endpoints = append(resp.Endpoints, e.ID)
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) updateParticipantStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "participantID")
	if !ok {
		return
	}
	var req participantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	conf, err := a.Conferences.MutateConference(c.Request.Context(), id, func(conf *domain.Conference) error {
		p, err := conf.FindParticipant(participantID)
		if err != nil {
			return err
		}
		conf.UpdateParticipantStatus(p, req.Status, a.now())
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf.GetParticipant(participantID))
}

func (a *API) getVideoControl(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	statuses, err := a.VideoControl.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if statuses == nil {
		statuses = domain.NewConferenceVideoControlStatuses()
	}
	c.JSON(http.StatusOK, statuses)
}

func (a *API) updateVideoControl(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "participantID")
	if !ok {
		return
	}
	var status domain.VideoControlStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video control status"})
		return
	}
	statuses, err := a.VideoControl.UpdateParticipant(c.Request.Context(), id, participantID.String(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (a *API) startConsultation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req startConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomLabel == "" || req.RequestedFor == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_label and requested_for are required"})
		return
	}
	conf, err := a.Conferences.GetConference(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := conf.FindParticipant(req.RequestedFor); err != nil {
		writeError(c, err)
		return
	}
	if !conf.CanParticipantJoinConsultationRoom(req.RoomLabel, req.RequestedFor) {
		writeError(c, errScreened)
		return
	}

	inv := a.Consultations.StartTracking(conf, req.RoomLabel, req.RequestedFor)
	c.JSON(http.StatusCreated, invitationView(inv))
}

func (a *API) getInvitation(c *gin.Context) {
	invID, ok := uuidParam(c, "invitationID")
	if !ok {
		return
	}
	inv, err := a.Consultations.Get(invID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitationView(inv))
}

// answerInvitation records one answer. Once everyone has accepted, every
// invitee is moved into the room and the invitation is dropped; a single
// rejection drops it too, as does a screening conflict found on admission.
// Two final accepts racing each other may both run admit; admit is
// idempotent, so the second one only repeats the same moves.
func (a *API) answerInvitation(c *gin.Context) {
	invID, ok := uuidParam(c, "invitationID")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "participantID")
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answer"})
		return
	}
	inv, err := a.Consultations.UpdateResponse(invID, participantID, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}

	switch {
	case inv.HaveAllAccepted():
		if err := a.admit(c.Request.Context(), inv); err != nil {
			if errors.Is(err, errScreened) {
				a.Consultations.Remove(inv.ID)
			}
			writeError(c, err)
			return
		}
		a.Consultations.Remove(inv.ID)
	case inv.HasSomeoneRejected():
		a.Consultations.Remove(inv.ID)
	}
	c.JSON(http.StatusOK, invitationView(inv))
}

func (a *API) admit(ctx context.Context, inv *consultation.Invitation) error {
	_, err := a.Conferences.MutateConference(ctx, inv.ConferenceID, func(conf *domain.Conference) error {
		invitees := inv.InvitedParticipantIDs()
		if conf.AreEntitiesScreenedFromEachOther(invitees, nil) {
			return errScreened
		}
		for _, id := range invitees {
			if conf.GetParticipant(id) == nil {
				continue
			}
			if !conf.CanParticipantJoinConsultationRoom(inv.RoomLabel, id) {
				return errScreened
			}
		}
		now := a.now()
		for _, id := range invitees {
			p := conf.GetParticipant(id)
			if p == nil {
				continue
			}
			conf.AddParticipantToConsultationRoom(inv.RoomLabel, p)
			conf.UpdateParticipantStatus(p, domain.ParticipantInConsultation, now)
		}
		return nil
	})
	return err
}

func invitationView(inv *consultation.Invitation) invitationResponse {
	outcome := "pending"
	switch {
	case inv.HaveAllAccepted():
		outcome = "accepted"
	case inv.HasSomeoneRejected():
		outcome = "rejected"
	}
	return invitationResponse{
		ID:           inv.ID,
		ConferenceID: inv.ConferenceID,
		RoomLabel:    inv.RoomLabel,
		RequestedFor: inv.RequestedFor,
		Answers:      inv.Answers(),
		Outcome:      outcome,
	}
}
