package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

// handleICEConfig advertises the STUN/TURN servers clients should use for
// their peer connections. The hub itself never joins the negotiation; it
// only hands out the configuration and relays the opaque payloads.
func (a *API) handleICEConfig(c *gin.Context) {
	servers := make([]webrtc.ICEServer, 0, len(a.Cfg.STUNURLs))
	if len(a.Cfg.STUNURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: a.Cfg.STUNURLs})
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}
