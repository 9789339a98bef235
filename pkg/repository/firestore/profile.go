package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const profilesCollection = "users"

type profileRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ProfileRepository = &profileRepository{}

func newProfileRepository(client *firestore.Client) *profileRepository {
	return &profileRepository{client: client}
}

// profileDoc is the Firestore persistence model. Field names follow the
// original document layout so existing data stays readable.
type profileDoc struct {
	SlackID     string    `firestore:"slackId"`
	Name        string    `firestore:"name"`
	City        string    `firestore:"city"`
	AccessToken string    `firestore:"slackAccessToken"`
	TeamID      string    `firestore:"teamId"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func (r *profileRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + profilesCollection)
	}
	return r.client.Collection(profilesCollection)
}

func fromProfileDoc(doc *profileDoc) *model.Profile {
	return &model.Profile{
		ID:          types.UserID(doc.SlackID),
		DisplayName: doc.Name,
		City:        doc.City,
		AuthToken:   doc.AccessToken,
		TeamID:      doc.TeamID,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// Get retrieves a profile by user ID
func (r *profileRepository) Get(ctx context.Context, id types.UserID) (*model.Profile, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "profile not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("id", id))
	}

	var pd profileDoc
	if err := doc.DataTo(&pd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V("id", id))
	}

	return fromProfileDoc(&pd), nil
}

// Upsert creates or merges a profile. Only fields present in the patch are
// written; everything else in the document survives (merge semantics).
func (r *profileRepository) Upsert(ctx context.Context, id types.UserID, patch *model.ProfilePatch) error {
	fields := map[string]any{
		"slackId":   id.String(),
		"updatedAt": firestore.ServerTimestamp,
	}
	if patch.DisplayName != nil {
		fields["name"] = *patch.DisplayName
	}
	if patch.City != nil {
		fields["city"] = *patch.City
	}
	if patch.AuthToken != nil {
		fields["slackAccessToken"] = *patch.AuthToken
	}
	if patch.TeamID != nil {
		fields["teamId"] = *patch.TeamID
	}

	if _, err := r.collection().Doc(id.String()).Set(ctx, fields, firestore.MergeAll); err != nil {
		return goerr.Wrap(err, "failed to upsert profile", goerr.V("id", id))
	}
	return nil
}

// DeleteCity removes the city field, leaving the rest of the profile intact.
// A missing profile is not an error and no document is created for it.
func (r *profileRepository) DeleteCity(ctx context.Context, id types.UserID) error {
	updates := []firestore.Update{
		{Path: "city", Value: firestore.Delete},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.collection().Doc(id.String()).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete city", goerr.V("id", id))
	}
	return nil
}

// BulkClear deletes all profiles
func (r *profileRepository) BulkClear(ctx context.Context) error {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate profiles for deletion")
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, ref := range refs {
		if _, err := bulkWriter.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
		}
	}

	bulkWriter.Flush()

	return nil
}
