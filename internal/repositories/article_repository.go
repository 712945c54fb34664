package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/newswire/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticleByID(ctx context.Context, id string) (*models.Article, error)
	GetAllArticles(ctx context.Context) ([]models.Article, error)
	UpdateArticle(ctx context.Context, id string, article *models.Article) error
	DeleteArticle(ctx context.Context, id string) error
}

// ErrArticleNotFound is returned when no article matches the given ID.
var ErrArticleNotFound = fmt.Errorf("article not found")

// MongoArticleRepository implements ArticleRepository for MongoDB
type MongoArticleRepository struct {
	collection *mongo.Collection
}

// NewMongoArticleRepository creates a new MongoArticleRepository
func NewMongoArticleRepository(db *mongo.Database) *MongoArticleRepository {
	return &MongoArticleRepository{collection: db.Collection("articles")}
}

// CreateArticle creates a new article in MongoDB
func (r *MongoArticleRepository) CreateArticle(ctx context.Context, article *models.Article) error {
	article.ID = primitive.NewObjectID()
	article.CreatedAt = time.Now()
	article.UpdatedAt = time.Now()
	if article.Files == nil {
		article.Files = []string{}
	}
	_, err := r.collection.InsertOne(ctx, article)
	return err
}

// GetArticleByID retrieves an article by ID from MongoDB
func (r *MongoArticleRepository) GetArticleByID(ctx context.Context, id string) (*models.Article, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrArticleNotFound
	}

	var article models.Article
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if article.Files == nil {
		article.Files = []string{}
	}
	return &article, nil
}

// GetAllArticles retrieves all articles from MongoDB, newest first
func (r *MongoArticleRepository) GetAllArticles(ctx context.Context) ([]models.Article, error) {
	articles := []models.Article{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].Files == nil {
			articles[i].Files = []string{}
		}
	}
	return articles, nil
}

// UpdateArticle updates an existing article in MongoDB
func (r *MongoArticleRepository) UpdateArticle(ctx context.Context, id string, article *models.Article) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrArticleNotFound
	}

	article.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":        article.Title,
			"content":      article.Content,
			"image":        article.Image,
			"files":        article.Files,
			"is_published": article.IsPublished,
			"updated_at":   article.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// DeleteArticle deletes an article by ID from MongoDB
func (r *MongoArticleRepository) DeleteArticle(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrArticleNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}
