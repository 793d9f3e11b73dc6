package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusHandler reports a one-shot snapshot of the device the backend
// runs on. Nothing is sampled in the background.
type StatusHandler struct{}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// StatusResponse is the device snapshot returned to the client.
type StatusResponse struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryTotalMB uint64  `json:"memoryTotalMb"`
}

// Get handles the device status request.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	var status StatusResponse

	if info, err := host.Info(); err == nil {
		status.Hostname = info.Hostname
		status.Platform = info.Platform
		status.UptimeSeconds = info.Uptime
	} else {
		log.Warn().Err(err).Msg("Failed to read host info")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
		status.MemoryTotalMB = vm.Total / 1024 / 1024
	} else {
		log.Warn().Err(err).Msg("Failed to read memory stats")
	}

	// Instantaneous reading; no interval wait.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("Failed to read CPU stats")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
