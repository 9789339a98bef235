package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const communitiesCollection = "communities"

type communityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.CommunityRepository = &communityRepository{}

func newCommunityRepository(client *firestore.Client) *communityRepository {
	return &communityRepository{client: client}
}

type memberDoc struct {
	SlackID string `firestore:"slackId"`
	Name    string `firestore:"name"`
	City    string `firestore:"city"`
}

type communityDoc struct {
	ChannelID   string      `firestore:"channel_id"`
	ChannelName string      `firestore:"channel_name"`
	Members     []memberDoc `firestore:"members"`
	Creator     string      `firestore:"creator"`
}

func (r *communityRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + communitiesCollection)
	}
	return r.client.Collection(communitiesCollection)
}

func toMemberDoc(m model.MemberSnapshot) memberDoc {
	return memberDoc{
		SlackID: m.UserID.String(),
		Name:    m.DisplayName,
		City:    m.City,
	}
}

func fromCommunityDoc(doc *communityDoc) *model.Community {
	members := make([]model.MemberSnapshot, len(doc.Members))
	for i, m := range doc.Members {
		members[i] = model.MemberSnapshot{
			UserID:      types.UserID(m.SlackID),
			DisplayName: m.Name,
			City:        m.City,
		}
	}
	return &model.Community{
		ChannelID:   types.ChannelID(doc.ChannelID),
		ChannelName: doc.ChannelName,
		Members:     members,
		CreatorID:   types.UserID(doc.Creator),
	}
}

// Get retrieves a community by channel ID
func (r *communityRepository) Get(ctx context.Context, id types.ChannelID) (*model.Community, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "community not found", goerr.V("channel_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get community", goerr.V("channel_id", id))
	}

	var cd communityDoc
	if err := doc.DataTo(&cd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal community", goerr.V("channel_id", id))
	}

	return fromCommunityDoc(&cd), nil
}

// Create stores a community if the channel has no document yet. An existing
// document is left untouched.
func (r *communityRepository) Create(ctx context.Context, community *model.Community) error {
	members := make([]memberDoc, len(community.Members))
	for i, m := range community.Members {
		members[i] = toMemberDoc(m)
	}
	doc := communityDoc{
		ChannelID:   community.ChannelID.String(),
		ChannelName: community.ChannelName,
		Members:     members,
		Creator:     community.CreatorID.String(),
	}

	if _, err := r.collection().Doc(community.ChannelID.String()).Create(ctx, &doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to create community", goerr.V("channel_id", community.ChannelID))
	}
	return nil
}

// AddMemberSnapshot appends a member snapshot with set-union semantics.
// ArrayUnion suppresses byte-identical tuples, so adding the same snapshot
// twice yields one entry.
func (r *communityRepository) AddMemberSnapshot(ctx context.Context, id types.ChannelID, snapshot model.MemberSnapshot) error {
	docRef := r.collection().Doc(id.String())

	// Auto-create with the default name; an existing document and its
	// channel name are left untouched.
	seed := communityDoc{
		ChannelID:   id.String(),
		ChannelName: model.DefaultChannelName,
	}
	if _, err := docRef.Create(ctx, &seed); err != nil && status.Code(err) != codes.AlreadyExists {
		return goerr.Wrap(err, "failed to create community for snapshot", goerr.V("channel_id", id))
	}

	updates := []firestore.Update{
		{Path: "members", Value: firestore.ArrayUnion(toMemberDoc(snapshot))},
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		return goerr.Wrap(err, "failed to add member snapshot",
			goerr.V("channel_id", id), goerr.V("user_id", snapshot.UserID))
	}
	return nil
}

// ListAll retrieves every community
func (r *communityRepository) ListAll(ctx context.Context) ([]*model.Community, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var communities []*model.Community
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate communities")
		}

		var cd communityDoc
		if err := doc.DataTo(&cd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal community", goerr.V("docID", doc.Ref.ID))
		}
		communities = append(communities, fromCommunityDoc(&cd))
	}

	return communities, nil
}

// ReplaceMembers overwrites a community's member roster
func (r *communityRepository) ReplaceMembers(ctx context.Context, id types.ChannelID, members []model.MemberSnapshot) error {
	docs := make([]memberDoc, len(members))
	for i, m := range members {
		docs[i] = toMemberDoc(m)
	}

	_, err := r.collection().Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "members", Value: docs},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "community not found", goerr.V("channel_id", id))
		}
		return goerr.Wrap(err, "failed to replace members", goerr.V("channel_id", id))
	}
	return nil
}

// ClearAllMembers empties the member roster of every community
func (r *communityRepository) ClearAllMembers(ctx context.Context) error {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate communities for member clear")
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, ref := range refs {
		updates := []firestore.Update{{Path: "members", Value: []memberDoc{}}}
		if _, err := bulkWriter.Update(ref, updates); err != nil {
			return goerr.Wrap(err, "failed to add Update operation to bulk writer")
		}
	}

	bulkWriter.Flush()

	return nil
}
