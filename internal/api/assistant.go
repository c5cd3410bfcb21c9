package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gracechapel/scripture-assistant/internal/markdown"
	"github.com/gracechapel/scripture-assistant/internal/service"
	"github.com/gracechapel/scripture-assistant/internal/session"
	"github.com/gracechapel/scripture-assistant/internal/types"
)

// LoginRequest is the request body for the shared-password login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Login handles POST /auth/login.
func (s *Server) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	token, userID, err := s.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid password"})
		}
		s.logger.WithError(err).Error("failed to issue token")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to log in"})
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, UserID: userID})
}

// ListModes handles GET /assistant/modes.
func (s *Server) ListModes(c echo.Context) error {
	return c.JSON(http.StatusOK, types.Modes())
}

// SetModeRequest is the request body for selecting a topic mode.
type SetModeRequest struct {
	Mode types.Mode `json:"mode"`
}

// SetMode handles POST /assistant/mode.
func (s *Server) SetMode(c echo.Context) error {
	var req SetModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	if err := mgr.SetMode(req.Mode); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown mode"})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// SendMessageRequest is the request body for a submission.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse returns both turns plus the assistant turn rendered
// into structured content for clients without a local renderer.
type SendMessageResponse struct {
	User      types.Message   `json:"user"`
	Assistant types.Message   `json:"assistant"`
	Rendered  []markdown.Node `json:"rendered"`
}

// SendMessage handles POST /assistant/messages.
func (s *Server) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	user, assistant, err := mgr.Submit(c.Request().Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyInput):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is empty"})
		case errors.Is(err, session.ErrBusy):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "a response is still being generated"})
		default:
			s.logger.WithError(err).Error("failed to get completion")
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "could not reach the assistant, please try again"})
		}
	}

	return c.JSON(http.StatusOK, SendMessageResponse{
		User:      user,
		Assistant: assistant,
		Rendered:  markdown.Render(assistant.Content),
	})
}

// ListConversations handles GET /assistant/conversations.
func (s *Server) ListConversations(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	convs := mgr.Conversations()
	if convs == nil {
		convs = []types.Conversation{}
	}
	return c.JSON(http.StatusOK, convs)
}

// CreateConversation handles POST /assistant/conversations.
func (s *Server) CreateConversation(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	conv := mgr.StartNewConversation(c.Request().Context())
	return c.JSON(http.StatusCreated, conv)
}

// LoadConversation handles POST /assistant/conversations/:id. It selects the
// conversation and returns its messages.
func (s *Server) LoadConversation(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	if err := mgr.LoadConversation(c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
	}
	return c.JSON(http.StatusOK, mgr.Messages())
}

// DeleteConversation handles DELETE /assistant/conversations/:id.
func (s *Server) DeleteConversation(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	if err := mgr.DeleteConversation(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ClearChat handles POST /assistant/chat/clear.
func (s *Server) ClearChat(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	mgr.ClearChat(c.Request().Context())
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListFavorites handles GET /assistant/favorites.
func (s *Server) ListFavorites(c echo.Context) error {
	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	favs := mgr.Favorites()
	if favs == nil {
		favs = []types.Favorite{}
	}
	return c.JSON(http.StatusOK, favs)
}

// ToggleFavoriteRequest identifies the live-array message to toggle.
type ToggleFavoriteRequest struct {
	MessageID string `json:"message_id"`
}

// ToggleFavoriteResponse reports the resulting favorite state.
type ToggleFavoriteResponse struct {
	Favorited bool `json:"favorited"`
}

// ToggleFavorite handles POST /assistant/favorites/toggle.
func (s *Server) ToggleFavorite(c echo.Context) error {
	var req ToggleFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	mgr := s.managerFor(c.Request().Context(), GetUserID(c))
	for _, msg := range mgr.Messages() {
		if msg.ID == req.MessageID {
			favorited := mgr.ToggleFavorite(c.Request().Context(), msg)
			return c.JSON(http.StatusOK, ToggleFavoriteResponse{Favorited: favorited})
		}
	}
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
}

// RenderRequest is the request body for rendering markdown text.
type RenderRequest struct {
	Text string `json:"text"`
}

// Render handles POST /assistant/render.
func (s *Server) Render(c echo.Context) error {
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	nodes := markdown.Render(req.Text)
	if nodes == nil {
		nodes = []markdown.Node{}
	}
	return c.JSON(http.StatusOK, nodes)
}
