package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Vehicle mirrors the API's vehicle payload.
type Vehicle struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Odometer float64 `json:"odometer"`
}

// Trip mirrors the wire format the server's MQTT subscriber expects.
type Trip struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	UserID    string    `json:"user_id"`
	Distance  float64   `json:"distance"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

var bikes = []struct {
	Make  string
	Model string
}{
	{"Hero", "Splendor Plus"},
	{"Honda", "Activa 6G"},
	{"Bajaj", "Pulsar 150"},
	{"TVS", "Apache RTR 160"},
	{"Royal Enfield", "Classic 350"},
	{"Yamaha", "FZ-S"},
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// registerOrLogin provisions a throwaway account for the run, falling back to
// login when the account already exists.
func registerOrLogin(apiURL, username, password string) (userID string, err error) {
	creds := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}
	data, _ := json.Marshal(creds)

	resp, err := authorizedPost(apiURL+"/auth/register", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		resp.Body.Close()
		resp, err = authorizedPost(apiURL+"/auth/login", bytes.NewBuffer(data))
		if err != nil {
			return "", fmt.Errorf("login request failed: %w", err)
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("auth failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	authToken = result.Token
	return result.User.ID, nil
}

func createVehicle(apiURL string) (string, error) {
	bike := bikes[rand.Intn(len(bikes))]
	vehicle := Vehicle{
		Name:     fmt.Sprintf("%s %s", bike.Make, bike.Model),
		Make:     bike.Make,
		Model:    bike.Model,
		Year:     2020 + rand.Intn(5),
		Odometer: float64(rand.Intn(2500)),
	}

	data, err := json.Marshal(vehicle)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vehicle: %w", err)
	}

	resp, err := authorizedPost(apiURL+"/vehicles", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("vehicle creation failed with status: %d", resp.StatusCode)
	}

	var created Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": created.ID,
		"make":       created.Make,
		"model":      created.Model,
		"odometer":   created.Odometer,
	}).Info("Created vehicle")

	return created.ID, nil
}

func publishTrip(client mqtt.Client, topic, vehicleID, userID string) {
	distance := 2 + rand.Float64()*28 // 2-30 km, a typical commute
	end := time.Now()
	trip := Trip{
		ID:        "trip_" + uuid.New().String(),
		VehicleID: vehicleID,
		UserID:    userID,
		Distance:  distance,
		StartTime: end.Add(-time.Duration(distance*2) * time.Minute),
		EndTime:   end,
	}

	data, err := json.Marshal(trip)
	if err != nil {
		log.WithError(err).Error("Failed to marshal trip")
		return
	}

	token := client.Publish(topic, 1, false, data)
	token.Wait()
	if token.Error() != nil {
		log.WithError(token.Error()).Error("Failed to publish trip")
		return
	}
	log.WithFields(log.Fields{
		"trip_id":     trip.ID,
		"vehicle_id":  vehicleID,
		"distance_km": fmt.Sprintf("%.1f", distance),
	}).Info("Published trip")
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}

	topic := os.Getenv("MQTT_TOPIC")
	if topic == "" {
		topic = "ridecare/trips"
	}

	interval := 10 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	vehicleCount := 3
	if v := os.Getenv("SIM_VEHICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			vehicleCount = n
		}
	}

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"broker":   broker,
		"topic":    topic,
		"interval": interval,
		"vehicles": vehicleCount,
	}).Info("Starting trip simulation")

	userID, err := registerOrLogin(apiURL, "simulator", "simulator-pass-1")
	if err != nil {
		log.WithError(err).Fatal("Failed to authenticate")
	}

	vehicleIDs := make([]string, 0, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		id, err := createVehicle(apiURL)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		vehicleIDs = append(vehicleIDs, id)
	}
	if len(vehicleIDs) == 0 {
		log.Fatal("No vehicles created. Ensure the API is reachable. Exiting.")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("ridecare-simulator").
		SetConnectRetry(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		vehicleID := vehicleIDs[rand.Intn(len(vehicleIDs))]
		publishTrip(client, topic, vehicleID, userID)
	}
}
