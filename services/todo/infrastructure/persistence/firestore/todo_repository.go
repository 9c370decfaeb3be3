// Package firestore stores to-dos in Cloud Firestore under
// users/{uid}/todoItems/{id}, using the field names the mobile client writes.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ghuser/todoreminder/pkg/events"
	"github.com/ghuser/todoreminder/pkg/logger"
	tododomain "github.com/ghuser/todoreminder/services/todo/domain"
	domainevents "github.com/ghuser/todoreminder/services/todo/domain/events"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

const (
	usersCollection = "users"
	itemsCollection = "todoItems"

	fieldTitle     = "title"
	fieldDate      = "date"
	fieldImageURL  = "imageURL"
	fieldLatitude  = "latitude"
	fieldLongitude = "longitude"
)

// ErrMalformedDocument is returned by decode for documents missing a field or
// holding a field of the wrong type.
var ErrMalformedDocument = errors.New("malformed todo document")

// TodoRepository implements repositories.TodoRepository on Firestore.
// Firestore has no outbox, so events go out after the write succeeds.
type TodoRepository struct {
	client *firestore.Client
	pub    events.Publisher
	log    logger.Logger
}

// NewTodoRepository returns a repository on client. A nil pub disables
// event publishing.
func NewTodoRepository(client *firestore.Client, pub events.Publisher, log logger.Logger) *TodoRepository {
	return &TodoRepository{client: client, pub: pub, log: log}
}

func (r *TodoRepository) items(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(itemsCollection)
}

// FetchAll returns every well-formed to-do of userID ordered by date.
// Malformed documents are logged and skipped.
func (r *TodoRepository) FetchAll(ctx context.Context, userID string) ([]*models.Todo, error) {
	iter := r.items(userID).OrderBy(fieldDate, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var todos []*models.Todo
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate todos: %w", err)
		}

		todo, err := decode(doc.Ref.ID, userID, doc.Data())
		if err != nil {
			r.log.WarnContext(ctx, "skipping malformed todo document",
				"user_id", userID, "todo_id", doc.Ref.ID, "error", err)
			continue
		}
		todos = append(todos, todo)
	}
	return models.SortByScheduledAt(todos), nil
}

// Get returns ErrTodoNotFound when the document does not exist.
func (r *TodoRepository) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	doc, err := r.items(userID).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, tododomain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return decode(id, userID, doc.Data())
}

// Create stores todo under a Firestore-generated id.
func (r *TodoRepository) Create(ctx context.Context, userID string, todo *models.Todo) (string, error) {
	ref := r.items(userID).NewDoc()
	if _, err := ref.Create(ctx, encode(todo)); err != nil {
		return "", fmt.Errorf("create todo: %w", err)
	}
	todo.ID = ref.ID
	todo.UserID = userID

	r.publish(ctx, domainevents.NewTodoChanged(domainevents.KindCreated, todo, time.Now()))
	return ref.ID, nil
}

// Update overwrites every field of an existing document. Fields absent from
// the encoded to-do are deleted from it.
func (r *TodoRepository) Update(ctx context.Context, userID, id string, todo *models.Todo) error {
	if _, err := r.items(userID).Doc(id).Update(ctx, updates(encode(todo))); err != nil {
		if status.Code(err) == codes.NotFound {
			return tododomain.ErrTodoNotFound
		}
		return fmt.Errorf("update todo: %w", err)
	}

	saved := *todo
	saved.ID = id
	saved.UserID = userID
	r.publish(ctx, domainevents.NewTodoChanged(domainevents.KindUpdated, &saved, time.Now()))
	return nil
}

// Delete removes an existing document.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.items(userID).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return tododomain.ErrTodoNotFound
		}
		return fmt.Errorf("delete todo: %w", err)
	}

	r.publish(ctx, domainevents.NewTodoDeleted(userID, id, time.Now()))
	return nil
}

// UserIDs lists user documents, including ones that only exist as the parent
// of a todoItems collection.
func (r *TodoRepository) UserIDs(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(usersCollection).DocumentRefs(ctx)

	var ids []string
	for {
		ref, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate users: %w", err)
		}
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// publish logs failures instead of returning them: the write already
// happened and the periodic resync repairs a missed event.
func (r *TodoRepository) publish(ctx context.Context, evt domainevents.TodoChangedEvent) {
	if r.pub == nil {
		return
	}
	msg, err := events.NewMessage(evt.EventID.String(), evt.Version, evt)
	if err == nil {
		err = r.pub.Publish(ctx, domainevents.TopicTodoChanged, msg)
	}
	if err != nil {
		r.log.ErrorContext(ctx, "failed to publish todo event",
			"kind", evt.Kind, "user_id", evt.UserID, "todo_id", evt.TodoID, "error", err)
	}
}

// encode maps t to wire names. imageURL is left out when there is no image.
func encode(t *models.Todo) map[string]any {
	data := map[string]any{
		fieldTitle:     t.Title.String(),
		fieldDate:      t.ScheduledAt,
		fieldLatitude:  t.Location.Latitude,
		fieldLongitude: t.Location.Longitude,
	}
	if t.ImageURL != "" {
		data[fieldImageURL] = t.ImageURL
	}
	return data
}

func updates(data map[string]any) []firestore.Update {
	fields := []string{fieldTitle, fieldDate, fieldImageURL, fieldLatitude, fieldLongitude}
	out := make([]firestore.Update, 0, len(fields))
	for _, field := range fields {
		v, ok := data[field]
		if !ok {
			v = firestore.Delete
		}
		out = append(out, firestore.Update{Path: field, Value: v})
	}
	return out
}

// decode builds a Todo from a raw document. imageURL and the coordinate are
// optional; the default location fills in when no coordinate was picked.
func decode(id, userID string, data map[string]any) (*models.Todo, error) {
	title, ok := data[fieldTitle].(string)
	if !ok || title == "" {
		return nil, fmt.Errorf("%w: %s: missing or not a string", ErrMalformedDocument, fieldTitle)
	}
	date, ok := data[fieldDate].(time.Time)
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing or not a timestamp", ErrMalformedDocument, fieldDate)
	}

	var imageURL string
	if v, present := data[fieldImageURL]; present && v != nil {
		if imageURL, ok = v.(string); !ok {
			return nil, fmt.Errorf("%w: %s: not a string", ErrMalformedDocument, fieldImageURL)
		}
	}

	loc := models.DefaultLocation
	lat, latOK, err := number(data, fieldLatitude)
	if err != nil {
		return nil, err
	}
	lon, lonOK, err := number(data, fieldLongitude)
	if err != nil {
		return nil, err
	}
	if latOK != lonOK {
		return nil, fmt.Errorf("%w: latitude and longitude must be set together", ErrMalformedDocument)
	}
	if latOK {
		loc = models.Location{Latitude: lat, Longitude: lon}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	}

	return &models.Todo{
		ID:          id,
		UserID:      userID,
		Title:       models.Title(title),
		ScheduledAt: date.UTC().Truncate(time.Second),
		ImageURL:    imageURL,
		Location:    loc,
	}, nil
}

// number reads a numeric field. Firestore returns whole numbers as int64.
func number(data map[string]any, field string) (float64, bool, error) {
	v, present := data[field]
	if !present || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s: not a number", ErrMalformedDocument, field)
	}
}

// Ping reads at most one user document to confirm Firestore is reachable.
func Ping(ctx context.Context, client *firestore.Client) error {
	it := client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}
