package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/prices"
	"github.com/icodeforyou/nordpool-go/types/maybe"
)

type DayMessage struct {
	Date     string               `json:"date"`
	Slots    int                  `json:"slots"`
	Min      maybe.Maybe[float64] `json:"min"`
	Max      maybe.Maybe[float64] `json:"max"`
	Average  maybe.Maybe[float64] `json:"average"`
	Complete bool                 `json:"complete"`
}

// Message is published, retained, to <topic>/<cc> whenever prices change.
type Message struct {
	Country    string     `json:"country"`
	Resolution int        `json:"resolution"`
	Today      DayMessage `json:"today"`
	Tomorrow   DayMessage `json:"tomorrow"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func newDayMessage(s prices.DayStatistics) DayMessage {
	m := DayMessage{
		Date:     s.Date,
		Slots:    len(s.Values),
		Min:      maybe.None[float64](),
		Max:      maybe.None[float64](),
		Average:  s.Average,
		Complete: s.Complete(),
	}
	if len(s.Values) > 0 {
		m.Min = maybe.Some(s.Min)
		m.Max = maybe.Some(s.Max)
	}
	return m
}

func NewMessage(country string, resolution int, stats prices.Statistics, now time.Time) Message {
	return Message{
		Country:    country,
		Resolution: resolution,
		Today:      newDayMessage(stats.Today),
		Tomorrow:   newDayMessage(stats.Tomorrow),
		UpdatedAt:  now,
	}
}

// Announcer publishes day statistics. A disabled announcer accepts and drops
// every message.
type Announcer struct {
	logger *slog.Logger
	client paho.Client
	topic  string
	now    func() time.Time
}

func NewAnnouncer(cnfg config.AppConfigMqtt) *Announcer {
	logger := slog.Default().With(slog.String("module", "mqtt"))
	a := &Announcer{
		logger: logger,
		topic:  cnfg.GetTopic(),
		now:    time.Now,
	}
	if !cnfg.Enabled {
		return a
	}

	setPahoLoggers(slog.Default().With(slog.String("module", "paho")))

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.GetPort()))
	opts.SetClientID("nordpool-go")
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.OnConnect = func(client paho.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client paho.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}
	a.client = paho.NewClient(opts)
	return a
}

func (a *Announcer) Enabled() bool {
	return a.client != nil
}

// Connect starts connecting in the background; the client keeps retrying
// until the broker answers.
func (a *Announcer) Connect() {
	if a.client == nil {
		return
	}
	a.client.Connect()
}

func (a *Announcer) Disconnect() {
	if a.client == nil {
		return
	}
	a.client.Disconnect(250)
}

func (a *Announcer) Topic(country string) string {
	return a.topic + "/" + strings.ToLower(country)
}

func (a *Announcer) Announce(ctx context.Context, country string, resolution int, stats prices.Statistics) error {
	if a.client == nil {
		return nil
	}

	payload, err := json.Marshal(NewMessage(country, resolution, stats, a.now()))
	if err != nil {
		return fmt.Errorf("encoding %s statistics: %w", country, err)
	}

	topic := a.Topic(country)
	token := a.client.Publish(topic, 1, true, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("publishing to %s: %w", topic, ctx.Err())
	}

	a.logger.Debug("statistics published", slog.String("topic", topic))
	return nil
}
