package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/models"
)

// MongoProfiles implements ProfileRepository on a Mongo collection.
type MongoProfiles struct {
	coll *mongo.Collection
}

func NewMongoProfiles(coll *mongo.Collection) *MongoProfiles {
	return &MongoProfiles{coll: coll}
}

func (r *MongoProfiles) Get(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoProfiles) List(ctx context.Context, excludeID string, limit int64) ([]*models.Profile, error) {
	filter := bson.M{"_id": bson.M{"$ne": excludeID}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Profile{}
	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (r *MongoProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	filter := bson.M{"_id": p.ID}
	update := bson.M{
		"$set": bson.M{
			"email":        p.Email,
			"full_name":    p.FullName,
			"interests":    p.Interests,
			"avatar_url":   p.AvatarURL,
			"availability": p.Availability,
			"updated_at":   p.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": p.CreatedAt},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// MongoConversations implements ConversationRepository. The unique index on
// (participant_a, participant_b) is what makes concurrent resolve-or-create
// converge on a single row.
type MongoConversations struct {
	coll *mongo.Collection
}

func NewMongoConversations(coll *mongo.Collection, log *zap.SugaredLogger) *MongoConversations {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "participant_a", Value: 1}, {Key: "participant_b", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("participants_pair_uniq"),
	}
	// Without this index concurrent resolve-or-create can produce
	// duplicate rows, so a failure here must not go unnoticed.
	if _, err := coll.Indexes().CreateOne(context.Background(), idx); err != nil {
		log.Errorw("create index participants_pair_uniq", "err", err)
	}
	return &MongoConversations{coll: coll}
}

func (r *MongoConversations) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoConversations) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	var c models.Conversation
	filter := bson.M{"participant_a": a, "participant_b": b}
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoConversations) Insert(ctx context.Context, c *models.Conversation) error {
	_, err := r.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoConversations) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"participant_a": userID},
		bson.M{"participant_b": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Conversation{}
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *MongoConversations) BumpUpdatedAt(ctx context.Context, id string, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": at}})
	return err
}

// MongoMessages implements MessageRepository.
type MongoMessages struct {
	coll *mongo.Collection
}

func NewMongoMessages(coll *mongo.Collection, log *zap.SugaredLogger) *MongoMessages {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("conversation_created_idx"),
	}
	if _, err := coll.Indexes().CreateOne(context.Background(), idx); err != nil {
		log.Warnw("create index conversation_created_idx", "err", err)
	}
	return &MongoMessages{coll: coll}
}

func (r *MongoMessages) Insert(ctx context.Context, m *models.Message) error {
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *MongoMessages) List(ctx context.Context, conversationID string) ([]*models.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	// Sort by id as well: v7 ids break created_at ties in insertion order.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MongoMessages) Last(ctx context.Context, conversationID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMessages) MarkRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": viewerID},
		"read":            false,
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoMessages) CountUnread(ctx context.Context, conversationIDs []string, viewerID string) (int64, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"conversation_id": bson.M{"$in": conversationIDs},
		"sender_id":       bson.M{"$ne": viewerID},
		"read":            false,
	}
	return r.coll.CountDocuments(ctx, filter)
}

// MongoInvitations implements InvitationRepository.
type MongoInvitations struct {
	coll *mongo.Collection
}

func NewMongoInvitations(coll *mongo.Collection, log *zap.SugaredLogger) *MongoInvitations {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("receiver_created_idx"),
	}
	if _, err := coll.Indexes().CreateOne(context.Background(), idx); err != nil {
		log.Warnw("create index receiver_created_idx", "err", err)
	}
	return &MongoInvitations{coll: coll}
}

func (r *MongoInvitations) Get(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *MongoInvitations) Insert(ctx context.Context, inv *models.Invitation) error {
	_, err := r.coll.InsertOne(ctx, inv)
	return err
}

func (r *MongoInvitations) ListForReceiver(ctx context.Context, receiverID string) ([]*models.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"receiver_id": receiverID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Invitation{}
	for cur.Next(ctx) {
		var inv models.Invitation
		if err := cur.Decode(&inv); err != nil {
			return nil, err
		}
		out = append(out, &inv)
	}
	return out, cur.Err()
}

func (r *MongoInvitations) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) (bool, error) {
	filter := bson.M{"_id": id, "status": models.InvitationPending}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
