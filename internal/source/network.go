package source

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Default interface names on the appliance.
const (
	IfaceWlan = "wlan0"
	IfaceEth  = "eth0"
)

// leasesPath is where dnsmasq records DHCP leases handed out in
// access-point mode.
const leasesPath = "/var/lib/misc/dnsmasq.leases"

// IfconfigSource reads interface addresses from ifconfig output and counts
// dnsmasq leases for the wireless interface.
type IfconfigSource struct {
	log zerolog.Logger

	// run and readFile are injectable for tests.
	run      func(name string, arg ...string) ([]byte, error)
	readFile func(path string) ([]byte, error)

	mu    sync.Mutex
	wlan  string
	eth   string
}

// NewIfconfigSource creates a Network backed by the ifconfig binary.
func NewIfconfigSource(log zerolog.Logger) *IfconfigSource {
	return &IfconfigSource{
		log: log.With().Str("component", "network").Logger(),
		run: func(name string, arg ...string) ([]byte, error) {
			return exec.Command(name, arg...).Output()
		},
		readFile: os.ReadFile,
		wlan:     "inactive",
		eth:      "inactive",
	}
}

// Update refreshes both interface states. On failure the previous values
// are retained.
func (n *IfconfigSource) Update() {
	out, err := n.run("ifconfig")
	if err != nil {
		n.log.Debug().Err(err).Msg("ifconfig failed")
		return
	}

	wlan, eth := parseIfconfig(string(out))
	if wlan != "inactive" {
		leases := 0
		if data, err := n.readFile(leasesPath); err == nil {
			leases = countLeases(string(data))
		}
		wlan = wlan + "  (" + strconv.Itoa(leases) + ")"
	}

	n.mu.Lock()
	n.wlan = wlan
	n.eth = eth
	n.mu.Unlock()
}

// Status returns the display line for the given interface.
func (n *IfconfigSource) Status(iface string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch iface {
	case IfaceWlan:
		return iface + ": " + n.wlan
	case IfaceEth:
		return iface + ": " + n.eth
	default:
		return iface + ": unknown"
	}
}

// parseIfconfig extracts the inet addresses of wlan0 and eth0 from
// ifconfig output. Interfaces without an inet address report "inactive".
func parseIfconfig(out string) (wlan, eth string) {
	wlan, eth = "inactive", "inactive"
	iface := ""
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 1 && strings.HasSuffix(fields[0], ":") {
			iface = strings.TrimSuffix(fields[0], ":")
		}
		if len(fields) >= 2 && fields[0] == "inet" {
			switch iface {
			case IfaceWlan:
				wlan = fields[1]
			case IfaceEth:
				eth = fields[1]
			}
		}
	}
	return wlan, eth
}

// countLeases counts non-blank lease lines.
func countLeases(data string) int {
	n := 0
	for _, line := range strings.Split(data, "\n") {
		if len(strings.TrimSpace(line)) > 5 {
			n++
		}
	}
	return n
}
