package store

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"chatfree/models"
)

const usersCollection = "users"

// MongoStore keeps each user as one document with the chats array embedded,
// so every mutation is a single-document atomic update.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoStore connects, pings, and returns a store bound to dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	log.Printf("[store] connected to mongodb database %q", dbName)
	return &MongoStore{
		client: client,
		users:  client.Database(dbName).Collection(usersCollection),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	var existing models.User
	err := s.users.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": u.Email}, {"username": u.Username}},
	}).Decode(&existing)
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Chats == nil {
		u.Chats = []models.Chat{}
	}
	_, err = s.users.InsertOne(ctx, u)
	return err
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	var u models.User
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *MongoStore) ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	u, err := s.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ChatSummary, 0, len(u.Chats))
	for _, c := range u.Chats {
		summaries = append(summaries, c.Summary())
	}
	return summaries, nil
}

func (s *MongoStore) CreateChat(ctx context.Context, userID, title string) (models.Chat, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return models.Chat{}, ErrNotFound
	}
	chat := models.Chat{
		ID:       bson.NewObjectID(),
		Title:    title,
		Messages: []models.Message{},
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"chats": chat}})
	if err != nil {
		return models.Chat{}, err
	}
	if res.MatchedCount == 0 {
		return models.Chat{}, ErrNotFound
	}

	// Re-read the persisted array and hand back its last element rather than
	// the in-memory copy.
	u, err := s.FindUserByID(ctx, userID)
	if err != nil {
		return models.Chat{}, err
	}
	if len(u.Chats) == 0 {
		return models.Chat{}, ErrNotFound
	}
	return u.Chats[len(u.Chats)-1], nil
}

func (s *MongoStore) GetChat(ctx context.Context, userID, chatID string) (models.Chat, error) {
	u, err := s.FindUserByID(ctx, userID)
	if err != nil {
		return models.Chat{}, err
	}
	for _, c := range u.Chats {
		if c.ID.Hex() == chatID {
			return c, nil
		}
	}
	return models.Chat{}, ErrNotFound
}

func (s *MongoStore) AppendMessage(ctx context.Context, userID, chatID string, msg models.Message) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	cid, err := bson.ObjectIDFromHex(chatID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": uid, "chats._id": cid},
		bson.M{"$push": bson.M{"chats.$.messages": msg}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteChat(ctx context.Context, userID, chatID string) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	cid, err := bson.ObjectIDFromHex(chatID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$pull": bson.M{"chats": bson.M{"_id": cid}}},
	)
	if err != nil {
		return err
	}
	// ModifiedCount distinguishes "nothing pulled" from a successful delete;
	// a missing user and a missing chat both land here.
	if res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}
