// Package ingest receives usage events from the outside world. Trip
// detection itself happens on the device; by the time a message lands here
// it already carries a computed distance.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ridecare/ridecare/internal/models"
)

// TripHandler consumes one decoded trip.
type TripHandler interface {
	HandleTrip(ctx context.Context, trip models.Trip) error
}

// Subscriber listens for trip messages on an MQTT topic and feeds them to a
// TripHandler. Malformed payloads are logged and dropped; a handler error
// never breaks the subscription.
type Subscriber struct {
	client  mqtt.Client
	topic   string
	handler TripHandler
}

// NewSubscriber builds a subscriber for the given broker and topic.
func NewSubscriber(broker, clientID, topic string, handler TripHandler) *Subscriber {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	s := &Subscriber{topic: topic, handler: handler}
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker and subscribes with QoS 1.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := s.client.Subscribe(s.topic, 1, s.onMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.WithField("topic", s.topic).Info("subscribed to trip events")
	return nil
}

// Stop unsubscribes and disconnects.
func (s *Subscriber) Stop() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.topic)
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var trip models.Trip
	if err := json.Unmarshal(msg.Payload(), &trip); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("dropping malformed trip payload")
		return
	}
	if trip.VehicleID == "" || trip.UserID == "" {
		log.WithField("trip_id", trip.ID).Warn("dropping trip without vehicle or user")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.handler.HandleTrip(ctx, trip); err != nil {
			log.WithError(err).WithField("trip_id", trip.ID).Error("trip processing failed")
		}
	}()
}
