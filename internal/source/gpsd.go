package source

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/rs/zerolog"
)

// DefaultGpsdAddr is the local gpsd JSON socket.
const DefaultGpsdAddr = "localhost:2947"

// watchCommand subscribes to the gpsd JSON report stream.
const watchCommand = `?WATCH={"enable":true,"json":true};` + "\n"

// GpsdSource reads the fix from gpsd's JSON-over-TCP stream. A background
// reader caches the latest TPV and SKY reports; Update only has to redial
// after a lost connection. All reads retain the last good values, so a gpsd
// restart degrades to stale data, never to errors.
type GpsdSource struct {
	log  zerolog.Logger
	addr string
	dial func(addr string) (net.Conn, error)
	now  func() time.Time

	mu      sync.Mutex
	conn    net.Conn
	fix     FixQuality
	lat     float64
	lon     float64
	alt     float64
	epoch   time.Time
	visible int
	inUse   int
	maxErr  int

	// timezone info is recomputed only when the fix moves to a new grid
	// square, the lookup is not free
	tzGrid   string
	tzAbbrev string
	tzOffset string
}

// NewGpsdSource creates a source reading from gpsd at addr, or the local
// default when addr is empty. No connection is made until Update.
func NewGpsdSource(log zerolog.Logger, addr string) *GpsdSource {
	if addr == "" {
		addr = DefaultGpsdAddr
	}
	return &GpsdSource{
		log:  log.With().Str("component", "gpsd").Logger(),
		addr: addr,
		dial: func(a string) (net.Conn, error) {
			return net.DialTimeout("tcp", a, 5*time.Second)
		},
		now: time.Now,
		fix: FixNone,
	}
}

// Update redials gpsd if the connection was lost. The report stream itself
// is consumed by the reader goroutine.
func (g *GpsdSource) Update() {
	g.mu.Lock()
	connected := g.conn != nil
	g.mu.Unlock()
	if connected {
		return
	}

	conn, err := g.dial(g.addr)
	if err != nil {
		g.log.Debug().Err(err).Str("addr", g.addr).Msg("gpsd dial failed")
		return
	}
	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		g.log.Debug().Err(err).Msg("gpsd watch failed")
		conn.Close()
		return
	}

	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
	g.log.Info().Str("addr", g.addr).Msg("gpsd connected")

	go g.readLoop(conn)
}

// Close drops the gpsd connection, stopping the reader goroutine.
func (g *GpsdSource) Close() error {
	g.mu.Lock()
	conn := g.conn
	g.conn = nil
	g.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (g *GpsdSource) readLoop(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		g.handleReport(sc.Bytes())
	}

	g.mu.Lock()
	mine := g.conn == conn
	if mine {
		g.conn = nil
	}
	g.mu.Unlock()
	conn.Close()
	if mine {
		g.log.Warn().Err(sc.Err()).Msg("gpsd stream ended")
	}
}

// tpvReport is the gpsd position-velocity-time report. Pointer fields
// distinguish absent values from zeroes.
type tpvReport struct {
	Class  string   `json:"class"`
	Mode   int      `json:"mode"`
	Time   string   `json:"time"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Alt    *float64 `json:"alt"`
	AltMSL *float64 `json:"altMSL"`
	Epx    *float64 `json:"epx"`
	Epy    *float64 `json:"epy"`
}

type skyReport struct {
	Class      string `json:"class"`
	Satellites []struct {
		SS   float64 `json:"ss"`
		Used bool    `json:"used"`
	} `json:"satellites"`
}

func (g *GpsdSource) handleReport(line []byte) {
	var head struct {
		Class string `json:"class"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return
	}
	switch head.Class {
	case "TPV":
		var tpv tpvReport
		if err := json.Unmarshal(line, &tpv); err != nil {
			return
		}
		g.applyTPV(tpv)
	case "SKY":
		var sky skyReport
		if err := json.Unmarshal(line, &sky); err != nil {
			return
		}
		g.applySKY(sky)
	}
}

func (g *GpsdSource) applyTPV(tpv tpvReport) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch tpv.Mode {
	case 1:
		g.fix = FixSeek
	case 2:
		g.fix = Fix2D
	case 3:
		g.fix = Fix3D
		if t, err := time.Parse(time.RFC3339, tpv.Time); err == nil {
			g.epoch = t
		}
	default:
		g.fix = FixNone
	}

	if tpv.Mode >= 2 {
		if tpv.Lat != nil {
			g.lat = *tpv.Lat
		}
		if tpv.Lon != nil {
			g.lon = *tpv.Lon
		}
		if tpv.Alt != nil {
			g.alt = *tpv.Alt
		} else if tpv.AltMSL != nil {
			g.alt = *tpv.AltMSL
		}
	}

	if tpv.Epx != nil && tpv.Epy != nil {
		err := *tpv.Epx
		if *tpv.Epy > err {
			err = *tpv.Epy
		}
		g.maxErr = int(err + 1)
	}
}

func (g *GpsdSource) applySKY(sky skyReport) {
	visible, inUse := 0, 0
	for _, sat := range sky.Satellites {
		if sat.SS > 0 {
			visible++
			if sat.Used {
				inUse++
			}
		}
	}
	g.mu.Lock()
	g.visible = visible
	g.inUse = inUse
	g.mu.Unlock()
}

func (g *GpsdSource) Fix() FixQuality {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fix
}

func (g *GpsdSource) Satellites() (visible, inUse int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible, g.inUse
}

func (g *GpsdSource) Coordinates() (lat, lon, alt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lat, g.lon, g.alt
}

func (g *GpsdSource) EpochTime() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

func (g *GpsdSource) MaxError() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxErr
}

// Grid returns the Maidenhead locator of the current 3D fix. Moving into a
// new grid square also refreshes the cached timezone info.
func (g *GpsdSource) Grid() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fix != Fix3D {
		return NoGrid
	}
	grid := Maidenhead(g.lat, g.lon)
	if grid != g.tzGrid {
		g.refreshTimezoneLocked()
		g.tzGrid = grid
	}
	return grid
}

func (g *GpsdSource) refreshTimezoneLocked() {
	g.tzAbbrev, g.tzOffset = "", ""

	name := latlong.LookupZoneName(g.lat, g.lon)
	if name == "" {
		return
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		g.log.Debug().Err(err).Str("zone", name).Msg("timezone load failed")
		return
	}
	local := g.now().In(loc)
	abbrev := local.Format("MST")
	if strings.HasPrefix(abbrev, "+") || strings.HasPrefix(abbrev, "-") {
		abbrev = ""
	}
	g.tzAbbrev = abbrev
	g.tzOffset = local.Format("-0700")
}

func (g *GpsdSource) TimezoneAbbrev() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tzAbbrev
}

func (g *GpsdSource) TimezoneOffset() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tzOffset
}

// Declination reports the magnetic declination at the fix. Computing it
// needs a geomagnetic field model this build does not carry, so it stays
// blank and the display leaves the corner empty.
func (g *GpsdSource) Declination() string {
	return ""
}
