package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type channelRequest struct {
	ChannelName string `json:"channel_name"`
}

type channelResponse struct {
	Channel string `json:"channel"`
}

// SubscribeChannel handles POST /broadcasting/auth.
func (s *Server) SubscribeChannel(c echo.Context) error {
	var req channelRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	ch, err := s.h.Channels.Subscribe(c.Request().Context(), principal(c), req.ChannelName)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, channelResponse{Channel: ch.Name()})
}

// UnsubscribeChannel handles DELETE /broadcasting/auth.
func (s *Server) UnsubscribeChannel(c echo.Context) error {
	var req channelRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	if err := s.h.Channels.Unsubscribe(c.Request().Context(), principal(c), req.ChannelName); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
