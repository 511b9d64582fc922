package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"google.golang.org/api/option"
)

// PushManager delivers incident notifications over Firebase Cloud Messaging
// to a configured topic. Optional: callers skip setup when no service
// account is configured.
type PushManager struct {
	FirebaseApp *firebase.App
	Topic       string
}

var ErrNotConfigured = errors.New("firebase service account not configured")

func (m *PushManager) Setup() error {
	fireBaseAuthKey := os.Getenv("TRAFIKINFO_FIREBASE_SERVICE_ACCOUNT")
	if fireBaseAuthKey == "" {
		return ErrNotConfigured
	}

	decodedKey, err := base64.StdEncoding.DecodeString(fireBaseAuthKey)
	if err != nil {
		return err
	}

	opts := []option.ClientOption{option.WithCredentialsJSON(decodedKey)}

	app, err := firebase.NewApp(context.Background(), nil, opts...)
	if err != nil {
		return err
	}

	m.FirebaseApp = app

	m.Topic = os.Getenv("TRAFIKINFO_FCM_TOPIC")
	if m.Topic == "" {
		m.Topic = "trafikinfo-incidents"
	}

	return nil
}

func (m *PushManager) SendPush(notification traffic.Notification) error {
	fcmClient, err := m.FirebaseApp.Messaging(context.Background())
	if err != nil {
		return err
	}

	_, err = fcmClient.Send(context.Background(), &messaging.Message{
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Message,
		},
		Topic: m.Topic,
	})

	if err != nil {
		return err
	}

	log.Info().Str("topic", m.Topic).Msg("Sent Push Notification")

	return nil
}
