package repositories

import (
	"context"

	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/pkg/mongodb"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository interface {
	EnsureIndexes(ctx context.Context) error
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.ProductResponse, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Distinct(ctx context.Context, field string) ([]interface{}, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ExistsByName(ctx context.Context, name string, excludeID *primitive.ObjectID) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error)
	SetFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(mongoClient *mongodb.MongoDBClient) ProductRepository {
	return &productRepository{
		collection: mongoClient.GetCollectionByName(constants.CollectionProducts),
	}
}

func (r *productRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to ensure products indexes")
	}
	return nil
}

func (r *productRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.ProductResponse, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate products")
	}
	defer cursor.Close(ctx)

	products := []models.ProductResponse{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "failed to decode products")
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}
	return count, nil
}

func (r *productRepository) Distinct(ctx context.Context, field string) ([]interface{}, error) {
	values, err := r.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read distinct %s", field)
	}
	return values, nil
}

func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find product %s", id.Hex())
	}
	return &product, nil
}

func (r *productRepository) ExistsByName(ctx context.Context, name string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"name": name}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "failed to check product name")
	}
	return count > 0, nil
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.Base = models.NewBase()
	}
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// Update replaces the editable fields and returns the stored document, or nil when id is unknown.
func (r *productRepository) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	return r.SetFields(ctx, id, bson.M{
		"name":            product.Name,
		"description":     product.Description,
		"specification":   product.Specification,
		"brand":           product.Brand,
		"price":           product.Price,
		"discount":        product.Discount,
		"tiles_per_box":   product.TilesPerBox,
		"is_best_seller":  product.IsBestSeller,
		"is_new_arrivals": product.IsNewArrivals,
		"recommended":     product.Recommended,
		"updated_at":      product.UpdatedAt,
	})
}

// SetFields $sets the given fields and returns the stored document, or nil when id is unknown.
func (r *productRepository) SetFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error) {
	var updated models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update product %s", id.Hex())
	}
	return &updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var deleted models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete product %s", id.Hex())
	}
	return &deleted, nil
}
