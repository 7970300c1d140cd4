package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/dto"
	"github.com/qrave1/confeet-agent/internal/usecase"
)

type CallHandler struct {
	callClient   usecase.CallClientUsecase
	callReceiver usecase.CallReceiverUsecase
	session      usecase.SessionProvider
}

func NewCallHandler(
	callClient usecase.CallClientUsecase,
	callReceiver usecase.CallReceiverUsecase,
	session usecase.SessionProvider,
) *CallHandler {
	return &CallHandler{
		callClient:   callClient,
		callReceiver: callReceiver,
		session:      session,
	}
}

func (h *CallHandler) State(c echo.Context) error {
	snap := h.callReceiver.Snapshot()
	invited := usecase.FilterParticipants(usecase.SortedParticipants(snap.Participants), "", false)

	return c.JSON(http.StatusOK, dto.CallStateResponse{
		Status:            snap.Status.String(),
		StatusCode:        snap.Status,
		Terminal:          snap.Status.IsTerminal(),
		Session:           snap.Session,
		IncomingCall:      snap.IncomingCall,
		HasIncomingCall:   snap.HasIncomingCall,
		HasJoiningRequest: snap.HasJoiningRequest,
		InvitedCount:      len(invited),
	})
}

// Participants отдает участников. view=in_room|invited фильтрует по статусу, q ищет по имени и email.
func (h *CallHandler) Participants(c echo.Context) error {
	query := c.QueryParam("q")

	var participants []models.CallParticipant

	switch c.QueryParam("view") {
	case "":
		participants = h.callReceiver.Participants()
	case "in_room":
		participants = h.callReceiver.Filter(query, true)
	case "invited":
		participants = h.callReceiver.Filter(query, false)
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "view must be in_room or invited"})
	}

	if participants == nil {
		participants = []models.CallParticipant{}
	}

	return c.JSON(http.StatusOK, dto.ParticipantsResponse{Participants: participants})
}

func (h *CallHandler) Initiate(c echo.Context) error {
	var req dto.InitiateCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ConversationID == "" || len(req.CalleeIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id and callee_ids are required"})
	}

	if req.CallType == "" {
		req.CallType = models.CallTypeAudio
	}

	if !req.CallType.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "call_type must be audio or video"})
	}

	var sent bool

	switch {
	case len(req.CalleeIDs) > 1:
		sent = h.callClient.InitiateGroupCall(req.CalleeIDs, req.ConversationID, req.CallType)
	case req.CallType == models.CallTypeVideo:
		sent = h.callClient.InitiateVideoCall(req.CalleeIDs[0], req.ConversationID)
	default:
		sent = h.callClient.InitiateAudioCall(req.CalleeIDs[0], req.ConversationID)
	}

	return sendResult(c, sent)
}

func (h *CallHandler) Join(c echo.Context) error {
	var req dto.JoinCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ConversationID == "" || req.CalleeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id and callee_id are required"})
	}

	return sendResult(c, h.callClient.JoinCall(req.CalleeID, req.ConversationID))
}

func (h *CallHandler) SendJoiningRequest(c echo.Context) error {
	var req dto.JoinCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ConversationID == "" || req.CalleeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id and callee_id are required"})
	}

	if req.CallType == "" {
		req.CallType = models.CallTypeAudio
	}

	if !req.CallType.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "call_type must be audio or video"})
	}

	return sendResult(c, h.callClient.SendJoiningRequest(req.CalleeID, req.ConversationID, req.CallType))
}

func (h *CallHandler) RequestToJoin(c echo.Context) error {
	var req dto.RequestToJoinRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	if h.callReceiver.IncomingCall() == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "no active call to invite into"})
	}

	return sendResult(c, h.callClient.RequestToJoin(req.UserID))
}

func (h *CallHandler) Accept(c echo.Context) error {
	return h.answer(c, func(req dto.AnswerCallRequest) bool {
		return h.callClient.AcceptCall(req.ConversationID, req.CallerID)
	})
}

func (h *CallHandler) Reject(c echo.Context) error {
	return h.answer(c, func(req dto.AnswerCallRequest) bool {
		return h.callClient.RejectCall(req.ConversationID, req.CallerID, req.Reason)
	})
}

func (h *CallHandler) Timeout(c echo.Context) error {
	return h.answer(c, func(req dto.AnswerCallRequest) bool {
		return h.callClient.TimeoutCall(req.ConversationID, req.CallerID)
	})
}

func (h *CallHandler) AcceptJoiningRequest(c echo.Context) error {
	return h.answer(c, func(req dto.AnswerCallRequest) bool {
		return h.callClient.AcceptJoiningRequest(req.ConversationID, req.CallerID)
	})
}

func (h *CallHandler) DismissJoiningRequest(c echo.Context) error {
	return h.answer(c, func(req dto.AnswerCallRequest) bool {
		return h.callClient.DismissJoiningRequest(req.ConversationID, req.CallerID, req.Reason)
	})
}

func (h *CallHandler) Cancel(c echo.Context) error {
	var req dto.CancelCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ConversationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id is required"})
	}

	if len(req.CalleeIDs) == 0 {
		req.CalleeIDs = h.callReceiver.Session().CalleeIDs
	}

	return sendResult(c, h.callClient.CancelCall(req.ConversationID, req.CalleeIDs))
}

func (h *CallHandler) End(c echo.Context) error {
	var req dto.EndCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	return sendResult(c, h.callClient.EndCall(req.Reason))
}

func (h *CallHandler) NotifyGroupCreated(c echo.Context) error {
	var req dto.GroupNotificationRequest
	if err := c.Bind(&req); err != nil || req.ConversationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id is required"})
	}

	user := h.session.GetUser()
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "agent session expired"})
	}

	return sendResult(c, h.callClient.NotifyGroupCreated(req.ConversationID, user.ID))
}

func (h *CallHandler) answer(c echo.Context, fn func(dto.AnswerCallRequest) bool) error {
	var req dto.AnswerCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ConversationID == "" || req.CallerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id and caller_id are required"})
	}

	return sendResult(c, fn(req))
}
