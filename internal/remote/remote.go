package remote

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"questifyAPI/internal/types/appstate"
)

const snapshotCollection = "snapshots"

// Store mirrors each user's snapshot to one Firestore document, addressed
// by the identity provider's stable user id. Saves are whole-document
// overwrites with no merge, so two devices writing at once last-write-wins
// on the entire snapshot. A nil *Store is valid and means remote sync is
// disabled; every method no-ops on it.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	if client == nil {
		return nil
	}
	return &Store{client: client}
}

func (s *Store) Enabled() bool {
	return s != nil
}

func (s *Store) Save(ctx context.Context, userID string, state *appstate.AppState) error {
	if s == nil || userID == "" {
		return nil
	}
	if _, err := s.client.Collection(snapshotCollection).Doc(userID).Set(ctx, state); err != nil {
		return fmt.Errorf("failed to save remote snapshot: %w", err)
	}
	return nil
}

// Load returns (nil, nil) when no document exists or the document does not
// decode; only transport failures surface as errors.
func (s *Store) Load(ctx context.Context, userID string) (*appstate.AppState, error) {
	if s == nil || userID == "" {
		return nil, nil
	}
	doc, err := s.client.Collection(snapshotCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load remote snapshot: %w", err)
	}

	var state appstate.AppState
	if err := doc.DataTo(&state); err != nil {
		log.Printf("corrupt remote snapshot for user %s, treating as absent: %v", userID, err)
		return nil, nil
	}
	return &state, nil
}

func (s *Store) Close() {
	if s == nil {
		return
	}
	s.client.Close()
}
