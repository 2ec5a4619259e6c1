// Package opensky fetches all current state vectors from the OpenSky REST API.
package opensky

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/models"
)

// StateColumns is the fixed field order of a row in the states array.
var StateColumns = []string{
	"icao24", "callsign", "origin_country", "time_position",
	"last_contact", "longitude", "latitude", "baro_altitude",
	"on_ground", "velocity", "true_track", "vertical_rate",
	"sensors", "geo_altitude", "squawk", "spi", "position_source",
}

const maxBodyBytes = 64 << 20

// Config configures the client.
type Config struct {
	URL                string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client performs the single states request of a cycle.
type Client struct {
	url      string
	username string
	password string
	http     *http.Client
}

// NewClient creates a client. The timeout bounds the whole request.
func NewClient(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		url:      cfg.URL,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// FetchStates retrieves and decodes the current states. No retries.
func (c *Client) FetchStates(ctx context.Context) (*models.StatesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, apperr.Fetch("request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Fetch("get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperr.Fetch("status", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Fetch("read", err)
	}

	return Decode(body)
}

type rawResponse struct {
	Time   *int64              `json:"time"`
	States [][]json.RawMessage `json:"states"`
}

// Decode parses a states body. Rows shorter than the 17-column schema are a
// SchemaError; extra trailing columns are ignored.
func Decode(body []byte) (*models.StatesResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Fetch("decode", err)
	}
	if raw.Time == nil {
		return nil, apperr.Fetch("decode", errors.New("missing time field"))
	}

	out := &models.StatesResponse{
		Time:   *raw.Time,
		States: make([]models.StateVector, 0, len(raw.States)),
	}
	for i, row := range raw.States {
		sv, err := decodeRow(i, row)
		if err != nil {
			return nil, err
		}
		out.States = append(out.States, sv)
	}
	return out, nil
}

func decodeRow(i int, row []json.RawMessage) (models.StateVector, error) {
	var sv models.StateVector
	if len(row) < len(StateColumns) {
		return sv, &apperr.SchemaError{
			Row: i,
			Err: fmt.Errorf("expected %d columns, got %d", len(StateColumns), len(row)),
		}
	}

	d := rowDecoder{row: i, cols: row}
	var icao *string
	d.field(0, &icao)
	d.field(1, &sv.Callsign)
	var country *string
	d.field(2, &country)
	d.integer(3, &sv.TimePosition)
	var lastContact *int64
	d.integer(4, &lastContact)
	d.field(5, &sv.Longitude)
	d.field(6, &sv.Latitude)
	d.field(7, &sv.BaroAltitude)
	d.field(8, &sv.OnGround)
	d.field(9, &sv.Velocity)
	d.field(10, &sv.TrueTrack)
	d.field(11, &sv.VerticalRate)
	d.field(12, &sv.Sensors)
	d.field(13, &sv.GeoAltitude)
	d.field(14, &sv.Squawk)
	d.field(15, &sv.SPI)
	var source *int64
	d.integer(16, &source)
	if d.err != nil {
		return sv, d.err
	}

	if icao == nil || *icao == "" {
		return sv, &apperr.SchemaError{Row: i, Field: "icao24", Err: errors.New("missing")}
	}
	sv.Icao24 = *icao
	if country != nil {
		sv.OriginCountry = *country
	}
	if lastContact != nil {
		sv.LastContact = *lastContact
	}
	if source != nil {
		ps := int32(*source)
		sv.PositionSource = &ps
	}
	return sv, nil
}

// rowDecoder keeps the first column error so the caller can decode a row
// without checking every field.
type rowDecoder struct {
	row  int
	cols []json.RawMessage
	err  error
}

func (d *rowDecoder) field(col int, dst any) {
	if d.err != nil {
		return
	}
	if err := json.Unmarshal(d.cols[col], dst); err != nil {
		d.err = &apperr.SchemaError{Row: d.row, Field: StateColumns[col], Err: err}
	}
}

// integer decodes an integer column that OpenSky sometimes sends as a float.
func (d *rowDecoder) integer(col int, dst **int64) {
	var v *float64
	d.field(col, &v)
	if d.err != nil || v == nil {
		return
	}
	n := int64(*v)
	*dst = &n
}
