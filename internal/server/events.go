package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"clubboard/internal/feed"
)

// Events godoc
// @Summary      Change-feed stream
// @Description  Server-sent events fired on every reservation insert or delete. Clients re-fetch the board on each event.
// @Tags         board
// @Produce      text/event-stream
// @Success      200 {string} string
// @Router       /board/events [get]
func Events(changeFeed *feed.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, cancel := changeFeed.Subscribe(c.Request.Context())
		defer cancel()

		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case event, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent("change", event)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
