package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// Default location of the gateway settings document: settings/firebase.
const (
	SettingsCollection = "settings"
	SettingsDocument   = "firebase"
)

// SettingsStore reads the gateway credential from Firestore.
type SettingsStore struct {
	client     *firestore.Client
	collection string
	document   string
}

func NewSettingsStore(client *firestore.Client) *SettingsStore {
	return &SettingsStore{
		client:     client,
		collection: SettingsCollection,
		document:   SettingsDocument,
	}
}

// settingsRecord is the stored document shape.
type settingsRecord struct {
	ServerKey string    `firestore:"server_key"`
	Endpoint  string    `firestore:"endpoint"`
	UpdatedAt time.Time `firestore:"updated_at,omitempty"`
}

// Load reads the settings document once and returns an immutable snapshot.
// Later edits to the document do not affect the returned accessor.
func (s *SettingsStore) Load(ctx context.Context) (push.StaticConfig, error) {
	doc, err := s.client.Collection(s.collection).Doc(s.document).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("settings document %s/%s not found", s.collection, s.document)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var record settingsRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return push.StaticConfig{
		push.KeyServerKey: record.ServerKey,
		push.KeyEndpoint:  record.Endpoint,
	}, nil
}
