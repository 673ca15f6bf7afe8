package source

import (
	"bufio"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestGpsd() *GpsdSource {
	g := NewGpsdSource(zerolog.Nop(), "test:2947")
	g.now = func() time.Time { return time.Date(2023, 7, 14, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestGpsdTPVReport(t *testing.T) {
	g := newTestGpsd()

	g.handleReport([]byte(`{"class":"TPV","mode":3,"time":"2023-11-14T22:13:20.000Z",` +
		`"lat":43.65,"lon":-79.38,"alt":117.3,"epx":4.1,"epy":6.5}`))

	if got := g.Fix(); got != Fix3D {
		t.Errorf("fix = %q, want %q", got, Fix3D)
	}
	lat, lon, alt := g.Coordinates()
	if lat != 43.65 || lon != -79.38 || alt != 117.3 {
		t.Errorf("coordinates = %v/%v/%v", lat, lon, alt)
	}
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if !g.EpochTime().Equal(want) {
		t.Errorf("epoch = %v, want %v", g.EpochTime(), want)
	}
	if got := g.MaxError(); got != 7 {
		t.Errorf("max error = %d, want 7", got)
	}
	if got := g.Grid(); got != "FN03hp46" {
		t.Errorf("grid = %q, want FN03hp46", got)
	}
}

func TestGpsdFixDowngradeRetainsPosition(t *testing.T) {
	g := newTestGpsd()

	g.handleReport([]byte(`{"class":"TPV","mode":3,"time":"2023-11-14T22:13:20.000Z","lat":43.65,"lon":-79.38,"alt":100}`))
	g.handleReport([]byte(`{"class":"TPV","mode":1}`))

	if got := g.Fix(); got != FixSeek {
		t.Errorf("fix = %q, want %q", got, FixSeek)
	}
	if lat, _, _ := g.Coordinates(); lat != 43.65 {
		t.Errorf("lat = %v, want retained 43.65", lat)
	}
	if got := g.Grid(); got != NoGrid {
		t.Errorf("grid = %q, want %q", got, NoGrid)
	}
}

func TestGpsdSKYCountsOnlyHeardSatellites(t *testing.T) {
	g := newTestGpsd()

	g.handleReport([]byte(`{"class":"SKY","satellites":[` +
		`{"ss":34.2,"used":true},{"ss":28.0,"used":true},` +
		`{"ss":12.5,"used":false},{"ss":0,"used":false}]}`))

	visible, inUse := g.Satellites()
	if visible != 3 || inUse != 2 {
		t.Errorf("satellites = %d/%d, want 3/2", visible, inUse)
	}
}

func TestGpsdIgnoresGarbage(t *testing.T) {
	g := newTestGpsd()

	g.handleReport([]byte(`not json`))
	g.handleReport([]byte(`{"class":"VERSION","release":"3.22"}`))
	g.handleReport([]byte(`{"class":"TPV","mode":"three"}`))

	if got := g.Fix(); got != FixNone {
		t.Errorf("fix = %q, want %q", got, FixNone)
	}
}

func TestGpsdTimezoneAtFix(t *testing.T) {
	g := newTestGpsd()

	g.handleReport([]byte(`{"class":"TPV","mode":3,"time":"2023-07-14T12:00:00.000Z","lat":43.65,"lon":-79.38}`))
	g.Grid()

	if got := g.TimezoneOffset(); got != "-0400" {
		t.Errorf("tz offset = %q, want -0400", got)
	}
	if got := g.TimezoneAbbrev(); got != "EDT" {
		t.Errorf("tz abbrev = %q, want EDT", got)
	}
}

func TestGpsdReconnects(t *testing.T) {
	g := newTestGpsd()

	var dials atomic.Int32
	serve := func(conn net.Conn, reports ...string) {
		sc := bufio.NewScanner(conn)
		sc.Scan() // watch subscription
		for _, r := range reports {
			conn.Write([]byte(r + "\n"))
		}
		conn.Close()
	}
	g.dial = func(string) (net.Conn, error) {
		dials.Add(1)
		client, server := net.Pipe()
		go serve(server, `{"class":"TPV","mode":3,"time":"2023-11-14T22:13:20.000Z","lat":43.65,"lon":-79.38}`)
		return client, nil
	}

	g.Update()
	waitFor(t, func() bool { return g.Fix() == Fix3D })

	// the server hung up; the next pass must redial
	waitFor(t, func() bool {
		g.Update()
		return dials.Load() >= 2
	})
	g.Close()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
