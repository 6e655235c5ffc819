package repositories

import (
	"context"
	"time"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(config.OrdersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now()
	id, err := insert(ctx, r.collection, order)
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.collection, bson.M{}, options.Find().SetSort(byNewest))
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Order", id))
}

type ContactRepository struct {
	collection *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{collection: db.Collection(config.ContactsCollection)}
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	contact.CreatedAt = time.Now()
	id, err := insert(ctx, r.collection, contact)
	if err != nil {
		return err
	}
	contact.ID = id
	return nil
}

func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	return findAll[models.Contact](ctx, r.collection, bson.M{}, options.Find().SetSort(byNewest))
}

func (r *ContactRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Contact", id))
}

type JobApplicationRepository struct {
	collection *mongo.Collection
}

func NewJobApplicationRepository(db *mongo.Database) *JobApplicationRepository {
	return &JobApplicationRepository{collection: db.Collection(config.JobApplicationsCollection)}
}

func (r *JobApplicationRepository) Create(ctx context.Context, app *models.JobApplication) error {
	app.CreatedAt = time.Now()
	id, err := insert(ctx, r.collection, app)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("Email already registered for a job application")
		}
		return err
	}
	app.ID = id
	return nil
}

func (r *JobApplicationRepository) EmailRegistered(ctx context.Context, email string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	n, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	return n > 0, err
}

// SubmitUTR records the payment reference for the application filed under
// email. The payment stays pending until an admin verifies it.
func (r *JobApplicationRepository) SubmitUTR(ctx context.Context, email, utr string) (*models.JobApplication, error) {
	return findOneAndUpdate[models.JobApplication](ctx, r.collection,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"utrNumber": utr}},
		"Application not found for this email")
}

func (r *JobApplicationRepository) List(ctx context.Context) ([]models.JobApplication, error) {
	return findAll[models.JobApplication](ctx, r.collection, bson.M{}, options.Find().SetSort(byNewest))
}

func (r *JobApplicationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.JobApplication, error) {
	return findOneAndUpdate[models.JobApplication](ctx, r.collection,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentStatus": status}},
		notFoundWithID("Application", id))
}

func (r *JobApplicationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Application", id))
}
