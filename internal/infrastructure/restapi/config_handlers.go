package restapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is the body of every non-2xx response.
type APIError struct {
	Error string `json:"error"`
}

// NetworksResponse lists resolved networks in declaration order.
type NetworksResponse struct {
	Data struct {
		Networks       []entity.ResolvedNetwork `json:"networks"`
		DefaultNetwork string                   `json:"defaultNetwork,omitempty"`
	} `json:"data"`
}

// ConfigHandler serves the resolved deploy config. Secrets never leave the
// entity layer, so responses can be built straight from it.
type ConfigHandler struct {
	configs port.ConfigProvider
	prober  port.ChainProber
	logger  port.Logger
}

// NewConfigHandler creates a ConfigHandler. prober may be nil, which disables the probe route.
func NewConfigHandler(configs port.ConfigProvider, prober port.ChainProber, log port.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, prober: prober, logger: log}
}

// Health reports whether a config has been built.
func (h *ConfigHandler) Health(c *gin.Context) {
	if h.configs.GetConfig() == nil {
		writeJSON(c, http.StatusServiceUnavailable, gin.H{"status": "no config loaded"})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// GetConfig returns the whole config record.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, ok := h.config(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"data": cfg})
}

// ListNetworks returns all networks in declaration order.
func (h *ConfigHandler) ListNetworks(c *gin.Context) {
	cfg, ok := h.config(c)
	if !ok {
		return
	}
	var resp NetworksResponse
	resp.Data.Networks = cfg.OrderedNetworks()
	resp.Data.DefaultNetwork = cfg.DefaultNetwork
	writeJSON(c, http.StatusOK, resp)
}

// GetNetwork returns a single network.
func (h *ConfigHandler) GetNetwork(c *gin.Context) {
	n, ok := h.network(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"data": n})
}

// ProbeNetwork asks the network endpoint for its chain id. A failed or
// mismatching probe answers 502 with the probe result as body.
func (h *ConfigHandler) ProbeNetwork(c *gin.Context) {
	if h.prober == nil {
		writeJSON(c, http.StatusNotImplemented, APIError{Error: "probing is disabled"})
		return
	}
	n, ok := h.network(c)
	if !ok {
		return
	}

	res := h.prober.Probe(c.Request.Context(), n)
	status := http.StatusOK
	if !res.OK {
		status = http.StatusBadGateway
		h.logger.Warn("Probe via API failed", "network", n.Name, "error", res.Error)
	}
	writeJSON(c, status, gin.H{"data": res})
}

func (h *ConfigHandler) config(c *gin.Context) (*entity.DeployConfig, bool) {
	cfg := h.configs.GetConfig()
	if cfg == nil {
		writeJSON(c, http.StatusServiceUnavailable, APIError{Error: "no config loaded"})
		return nil, false
	}
	return cfg, true
}

func (h *ConfigHandler) network(c *gin.Context) (entity.ResolvedNetwork, bool) {
	cfg, ok := h.config(c)
	if !ok {
		return entity.ResolvedNetwork{}, false
	}
	name := c.Param("name")
	n, found := cfg.Network(name)
	if !found {
		writeJSON(c, http.StatusNotFound, APIError{Error: fmt.Sprintf("%v: %s", entity.ErrUnknownNetwork, name)})
		return entity.ResolvedNetwork{}, false
	}
	return n, true
}

func writeJSON(c *gin.Context, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}
